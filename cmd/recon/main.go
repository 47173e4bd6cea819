package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"unit-recon/internal/adapters/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		log.Error().Err(err).Msg("recon failed")
		os.Exit(1)
	}
}
