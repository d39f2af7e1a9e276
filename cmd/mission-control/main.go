package main

import (
	"os"

	"github.com/p-blackswan/mission-control/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
