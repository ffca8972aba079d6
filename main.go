package main

import (
	"os"

	"github.com/warmlead/reachout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
