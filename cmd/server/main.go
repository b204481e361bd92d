package main

import (
	"context"
	"log"

	"audio_conversion/config"
	"audio_conversion/internal/server"
	"audio_conversion/pkg/logger"

	_ "audio_conversion/cmd/server/docs"
)

// @title           Audio conversion API
// @version         1.0
// @description     Converts WAV uploads to MP3 and returns the file or a public download link.

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /

func main() {
	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	l := logger.New(cfg.Log.Level)

	// Run
	ctx := context.Background()
	s := server.NewServer(ctx, cfg, l)
	if err := s.Run(ctx, cfg); err != nil {
		l.Fatal(err)
	}
}
