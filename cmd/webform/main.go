package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikhailRaia/shortener-form/internal/app"
	"github.com/MikhailRaia/shortener-form/internal/config"
	"github.com/MikhailRaia/shortener-form/internal/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webApp, err := app.NewWebApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize form server")
	}

	if err := webApp.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error running form server")
	}
}
