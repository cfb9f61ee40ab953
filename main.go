package main

import (
	"log"

	"github.com/spigell/job-autopilot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
