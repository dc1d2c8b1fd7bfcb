package main

import (
	"os"

	"github.com/genlink-dev/genlink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
