// Package main is the entry point for the medallion CLI binary.
package main

import (
	"os"

	"medallion-demo/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
