package main

import (
	"log"

	"github.com/joho/godotenv"

	"goanam/adapters/report"
	"goanam/adapters/stats"
	"goanam/api"
	"goanam/app"
	"goanam/internal/config"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] configuration error: %v", err)
	}

	svc := app.NewCalibrationService(
		stats.NewTableBuilder(),
		stats.NewNormalScorer(),
		stats.NewDescriptive(),
		report.NoopSink{},
	)

	server := api.NewServer(cfg, svc)
	if err := server.Start(); err != nil {
		log.Fatalf("[Main] server failed: %v", err)
	}
}
