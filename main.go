package main

import (
	"os"

	"github.com/compozy/plistyaml/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
