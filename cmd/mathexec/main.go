package main

import (
	"os"

	"github.com/zephyrtronium/mathexec/cmd/mathexec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
