package main

import (
	"os"

	"github.com/iveel36/spacetime-sim-2020/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
