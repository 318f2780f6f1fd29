package main

import (
	"os"

	"github.com/helios-ops/helios/cmd/helios/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
