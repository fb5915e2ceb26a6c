package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricescout/backend/config"
	httpDelivery "github.com/pricescout/backend/internal/delivery/http"
	"github.com/pricescout/backend/internal/infrastructure/cache"
	"github.com/pricescout/backend/internal/infrastructure/fetch"
	"github.com/pricescout/backend/internal/infrastructure/gemini"
	"github.com/pricescout/backend/internal/sources"
	"github.com/pricescout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	fetcher := fetch.NewClient(fetch.Config{
		ScraperAPIKey:  cfg.ScraperAPI.APIKey,
		ScraperAPIBase: cfg.ScraperAPI.BaseURL,
		Timeout:        cfg.Search.FetchTimeout,
	})
	if cfg.ScraperAPI.APIKey != "" {
		log.Printf("Scraping provider configured: %s", cfg.ScraperAPI.BaseURL)
	} else {
		log.Printf("WARNING: scraping provider key not set - e-commerce fetches fall back to direct HTTP")
	}

	completer := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
	})
	siteCache := cache.NewSiteListCache()

	// Initialize source adapters
	opts := sources.Options{
		MaxRawCandidates:   cfg.Search.MaxRawCandidates,
		AICandidateCap:     cfg.Search.AICandidateCap,
		HTMLTruncateBytes:  cfg.Search.HTMLTruncateBytes,
		MinResultsBeforeAI: cfg.Search.MinResultsBeforeAI,
		SiteFanout:         cfg.Search.SiteFanout,
		ProbeTimeout:       cfg.Search.ProbeTimeout,
	}
	extractor := sources.NewExtractor(completer, opts)

	amazon := sources.NewAmazonAdapter(fetcher, extractor, cfg.ScraperAPI.APIKey, opts)
	flipkart := sources.NewFlipkartAdapter(fetcher, extractor, opts)
	multisite := sources.NewMultiSiteAdapter(fetcher, extractor, siteCache, completer, opts)
	google := sources.NewGoogleSearchAdapter(cfg.Google.APIKey, cfg.Google.CSEID, extractor, opts)

	if cfg.Google.APIKey == "" || cfg.Google.CSEID == "" {
		log.Printf("WARNING: Google Custom Search not configured - the google adapter will report errors")
	}

	// Initialize usecase layer
	searchService := usecase.NewSearchService(amazon, flipkart, multisite, google)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
