package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"amazon-tracker/config"
	"amazon-tracker/scraper/amazon"
	"amazon-tracker/services"
	"amazon-tracker/storage"
	"amazon-tracker/utils"
)

func main() {
	logger := utils.NewLogger("scraper")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	keyword := "wireless mouse"
	if len(os.Args) > 1 {
		keyword = strings.Join(os.Args[1:], " ")
	}

	runID := uuid.NewString()[:8]

	logger.Info("=== Amazon Price Tracker scraper starting (run %s) ===", runID)
	logger.Info("Config — keyword: %q | max products: %d | headless: %v | page timeout: %s",
		keyword, cfg.MaxProducts, cfg.Headless, cfg.PageLoadTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := storage.NewCSVExporter(cfg.OutputDir)
	if err != nil {
		logger.Error("Failed to create CSV exporter: %v", err)
		os.Exit(1)
	}

	writer, err := storage.NewPostgresWriter(cfg.DatabaseURL())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer writer.Close()

	amazonScraper := amazon.New(cfg, logger)
	raws, err := amazonScraper.Scrape(ctx, keyword)
	if err != nil {
		logger.Error("Amazon scrape failed: %v", err)
	}

	if len(raws) == 0 {
		logger.Error("No listings were scraped. Exiting.")
		os.Exit(1)
	}

	logger.Info("Scraped %d raw listings — cleaning...", len(raws))

	collectedAt := time.Now().UTC()

	cleaner := services.NewCleaner(logger, cfg.KRWUSDRate)
	products := cleaner.Clean(keyword, collectedAt, raws)

	if len(products) == 0 {
		logger.Error("All listings were dropped during cleaning. Exiting.")
		os.Exit(1)
	}

	if err := writer.Write(products); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		os.Exit(1)
	}
	logger.Info("%d products stored in PostgreSQL (table: products)", len(products))

	csvPath, err := exporter.Export(keyword, collectedAt, products)
	if err != nil {
		logger.Error("CSV export failed: %v", err)
		os.Exit(1)
	}
	logger.Info("CSV exported: %s", csvPath)

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(keyword, products)
	insightSvc.Print(report)

	fmt.Printf("  Done. %d products → PostgreSQL (products table) | CSV → %s\n\n",
		len(products), csvPath)
}
