// Package main is the entry point of the askdb CLI.
package main

import (
	"askdb/cli/cmd"
)

func main() {
	cmd.Execute()
}
