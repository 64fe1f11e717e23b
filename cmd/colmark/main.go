// Command colmark rewrites MyBatis mapper XML trees, marking targeted
// database columns with a migration prefix.
package main

import (
	"os"

	"github.com/colmark/colmark/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
