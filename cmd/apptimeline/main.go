// Package main is the entry point for the apptimeline CLI.
package main

import (
	"os"

	"github.com/crimson-sun/apptimeline/internal/cli"

	// Register connector implementations.
	_ "github.com/crimson-sun/apptimeline/internal/connector/local"
	_ "github.com/crimson-sun/apptimeline/internal/connector/s3"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
