// Package main is the entry point for the storefront API service.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nutesshop/storefront/internal/app"
)

// version can be set at build time via -ldflags
var version = "dev"

func main() {
	configPath := flag.String("config", "config.yml", "path to configuration file")
	migrationsDir := flag.String("migrations", "migrations", "path to SQL migrations directory")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		log.Printf("storefront version %s\n", version)
		os.Exit(0)
	}

	// Optional .env for local development; containers inject real env vars.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	application, err := app.New(app.Options{
		ConfigPath:    *configPath,
		MigrationsDir: *migrationsDir,
		Version:       version,
	})
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			log.Printf("Failed to close application: %v", closeErr)
		}
	}()

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
