package main

import (
	"os"

	"github.com/nhle/adchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
