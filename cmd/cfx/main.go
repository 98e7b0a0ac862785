// Package main is the entry point for the cfx CLI tool.
package main

import (
	"github.com/hargabyte/cfx/internal/cmd"
)

func main() {
	cmd.Execute()
}
