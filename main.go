package main

import (
	"log"

	"github.com/jtrevag/lfg-discord-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
