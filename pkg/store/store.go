package store

import (
	"errors"

	"github.com/logguard/logguard/pkg/models"
)

var (
	ErrRunNotFound         = errors.New("run not found")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// Store defines the interface for run-history persistence
type Store interface {
	CreateRun(run *models.RunRecord) error
	UpdateRun(run *models.RunRecord) error
	GetRun(id string) (*models.RunRecord, error)
	GetAllRuns() []*models.RunRecord
	GetRunsByStatus(status models.RunStatus) []*models.RunRecord

	Close() error
	HealthCheck() error
}

// Config holds store configuration
type Config struct {
	Type string // "sqlite" or "memory"
	Path string // database path for sqlite
}

// NewStore creates a store based on configuration
func NewStore(config Config) (Store, error) {
	switch config.Type {
	case "sqlite", "":
		path := config.Path
		if path == "" {
			path = "logguard.db"
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, ErrUnsupportedDatabase
	}
}
