// Package main provides the cricdash command-line entrypoint.
package main

import (
	"os"

	"github.com/leapstack-labs/cricdash/internal/cli"

	_ "github.com/leapstack-labs/cricdash/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/cricdash/pkg/adapters/postgres"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
