package main

import (
	"context"
	"log/slog"
	"os"

	"shopbook/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Applies db/schema.sql to the configured database through atlas. Atlas
// diffs the live schema against the desired one, so this is idempotent and
// safe to run on every deploy.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var dbCfg config.DBConfig
	if err := envconfig.Process("", &dbCfg); err != nil {
		slog.Error("failed to load database config", "error", err)
		os.Exit(1)
	}

	devURL := os.Getenv("ATLAS_DEV_URL")
	if devURL == "" {
		devURL = "docker://postgres/16/dev"
	}

	client, err := atlasexec.NewClient(".", "atlas")
	if err != nil {
		slog.Error("failed to initialize atlas client", "error", err)
		os.Exit(1)
	}

	result, err := client.SchemaApply(context.Background(), &atlasexec.SchemaApplyParams{
		URL:         dbCfg.BuildDSN(),
		To:          "file://db/schema.sql",
		DevURL:      devURL,
		AutoApprove: true,
	})
	if err != nil {
		slog.Error("schema apply failed", "error", err)
		os.Exit(1)
	}

	slog.Info("schema applied",
		"applied", len(result.Changes.Applied),
		"pending", len(result.Changes.Pending),
	)
}
