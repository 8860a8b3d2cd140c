package main

import (
	"context"
	"os"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
	"github.com/MKhiriev/go-secret-keeper/internal/client"
	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
	"github.com/MKhiriev/go-secret-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	memguard.CatchInterrupt()
	code := run()
	memguard.Purge()
	os.Exit(code)
}

func run() int {
	log := logger.NewClientLogger("go-secret-client")

	cfg, err := config.GetClientConfig("")
	if err != nil {
		log.Error().Err(err).Msg("error getting configs")
		client.PrintError(os.Stderr, err)
		return 2
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Error().Err(err).Msg("create server adapter")
		client.PrintError(os.Stderr, err)
		return 2
	}

	app := client.NewApp(
		service.NewClientServices(serverAdapter, cfg, log),
		models.NewAppBuildInfo(buildVersion, buildDate, buildCommit),
		log,
	)

	// memguard.CatchInterrupt owns SIGINT: it wipes key material and exits.
	if err = app.Run(context.Background(), os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("command failed")
		client.PrintError(os.Stderr, err)
		return 1
	}
	return 0
}
