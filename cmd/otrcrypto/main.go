package main

import (
	"os"

	"github.com/pzverkov/otrcrypto/cmd/otrcrypto/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
