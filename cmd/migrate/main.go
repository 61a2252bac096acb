// Command migrate creates (or with -down drops) the opinions schema.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"what-to-watch/internal/config"
	"what-to-watch/internal/infrastructure/database"
	"what-to-watch/pkg/logger"
)

func main() {
	down := flag.Bool("down", false, "drop the schema instead of creating it")
	timeout := flag.Duration("timeout", 30*time.Second, "migration timeout")
	flag.Parse()

	_ = godotenv.Load()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env, os.Getenv("LOG_LEVEL"))

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load database config")
	}

	db, err := database.OpenSQL(dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *down {
		err = database.MigrateDown(ctx, db)
	} else {
		err = database.MigrateUp(ctx, db)
	}
	if err != nil {
		log.Error().Err(err).Bool("down", *down).Msg("Migration failed")
		cancel()
		db.Close()
		os.Exit(1)
	}

	log.Info().Bool("down", *down).Msg("✅ Migration completed")
}
