package main

import (
	"log"

	"ticket-lookup/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
