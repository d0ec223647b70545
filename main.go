package main

import (
	"log"

	"github.com/yizhaofeng1/ai-trader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("could not start application: %v", err)
	}
}
