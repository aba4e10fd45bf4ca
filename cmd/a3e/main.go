// Package main is the entry point for the a3e CLI tool.
package main

import (
	"github.com/jeremyje1/MapMyStandards-sub001/internal/cmd"
)

func main() {
	cmd.Execute()
}
