package main

import (
	"os"

	"github.com/logguard/logguard/cmd/logguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
