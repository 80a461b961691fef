package main

import (
	"log"

	"hexpack/cmd/hxp/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
