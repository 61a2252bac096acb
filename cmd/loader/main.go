// Command loader bulk loads opinions from a CSV file.
//
//	loader -file opinions.csv
//
// The header row names the columns: title, text and optionally source and
// added_by, in any order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"what-to-watch/internal/config"
	opinionRepo "what-to-watch/internal/domains/opinion/repository"
	opinionService "what-to-watch/internal/domains/opinion/service"
	"what-to-watch/internal/infrastructure/database"
	"what-to-watch/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	file := flag.String("file", "opinions.csv", "CSV file to load")
	flag.Parse()

	envErr := godotenv.Load()
	logger.Init(getEnv("APP_ENV", "development"), getEnv("LOG_LEVEL", "info"))
	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Error("Failed to load database config", err)
		return 1
	}

	db := database.NewPostgresDB(dbConfig)
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.Connect(connectCtx); err != nil {
		logger.Error("Failed to connect to database", err)
		return 1
	}
	defer db.Close()

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("Failed to open CSV file", err)
		return 1
	}
	defer f.Close()

	importer := opinionService.NewBulkImportService(
		opinionService.NewOpinionService(opinionRepo.NewPostgresRepository(db.Pool)),
	)

	logger.Info("Loading opinions", map[string]interface{}{"file": *file})

	result, err := importer.Import(ctx, f)
	if result != nil {
		for _, rowErr := range result.Errors {
			fmt.Fprintf(os.Stderr, "row %d: %s: %s\n", rowErr.Row, rowErr.Field, rowErr.Message)
		}
		fmt.Printf("Loaded opinions: %d\n", result.Loaded)
	}
	if err != nil {
		logger.Error("Import failed", err)
		return 1
	}

	return 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
