package main

import (
	"os"

	"github.com/keval-dev/keval/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
