package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"visionspeak/cmd"
	"visionspeak/internal/config"
	"visionspeak/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands load and report the full configuration themselves, only the
	// logger settings are needed here
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting VisionSpeak")

	cmd.Execute()

	log.Debug().Msg("VisionSpeak shutdown")
}
