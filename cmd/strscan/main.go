// Package main provides the strscan command.
package main

import (
	"os"

	"github.com/leapstack-labs/strscan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
