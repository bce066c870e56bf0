// Package main is the entry point for the Kestrel CLI.
package main

import (
	"os"

	"github.com/kestrelwallet/kestrel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
