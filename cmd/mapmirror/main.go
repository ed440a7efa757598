package main

import (
	"os"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/cmd/mapmirror/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
