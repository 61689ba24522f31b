package main

import (
	"os"

	"github.com/stemsi/paxcalc-backend/cmd/paxcalc/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
