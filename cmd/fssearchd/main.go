// Package main is the entry point for the fssearchd CLI tool.
package main

import (
	"os"

	"github.com/fssearchd/fssearchd/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
