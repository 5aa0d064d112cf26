package main

import (
	"os"

	"github.com/cocosip/go-jpegasm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
