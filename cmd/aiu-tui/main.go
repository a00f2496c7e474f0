package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/audio-info-updater/internal/config"
	"github.com/handiism/audio-info-updater/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to settings file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(3)
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
