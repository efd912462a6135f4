package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/optimode/emailaddr/internal/config"
	"github.com/optimode/emailaddr/internal/logger"
	"github.com/optimode/emailaddr/internal/server"
)

func runServe(ctx context.Context, args []string, stderr io.Writer) int {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(fs, ".")
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitUsage
	}
	log := logger.New(stderr, cfg.Log.Level, cfg.Log.Format)

	v, err := cfg.Validator.NewValidator()
	if err != nil {
		log.Error().Err(err).Msg("invalid validator configuration")
		return exitUsage
	}

	log.Info().
		Bool("cache", cfg.Validator.Cache).
		Bool("typos", cfg.Validator.Typos).
		Int("workers", cfg.Validator.Workers).
		Msg("starting emailaddr server")

	if err := server.New(cfg.Server, cfg.Validator.Workers, v, log).Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return exitInvalid
	}
	log.Info().Msg("server stopped")
	return exitOK
}
