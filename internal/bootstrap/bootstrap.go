// Package bootstrap builds the screening services from configuration. It is
// shared by the API server and the batch CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/resume-shortlister/internal/config"
	"alfredoptarigan/resume-shortlister/internal/repositories"
	"alfredoptarigan/resume-shortlister/internal/services"
)

type Components struct {
	Catalog  services.JobCatalog
	Screener services.ScreeningService
	History  repositories.ScreeningRepository
	Index    services.CandidateIndex

	closers []func() error
}

// OnClose registers a client to be released by Close.
func (c *Components) OnClose(closeFn func() error) {
	c.closers = append(c.closers, closeFn)
}

// Close releases clients opened by Build, newest first.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			log.Printf("⚠️  Failed to close client: %v", err)
		}
	}
	c.closers = nil
}

func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	comps := &Components{}

	catalog, err := services.LoadJobCatalog(cfg.Screening.JobDescriptionsFile)
	if err != nil {
		return nil, err
	}
	comps.Catalog = catalog
	log.Printf("✅ Job catalog loaded (%d roles)", len(catalog.Roles()))

	settings := services.GenerationSettings{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}

	var gemini services.GeminiService
	if cfg.LLM.Provider == config.ProviderGemini || cfg.Qdrant.Enabled {
		gemini, err = services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, settings)
		if err != nil {
			return nil, err
		}
		log.Println("✅ Gemini AI initialized successfully")
	}

	var invoker services.ModelInvoker
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		invoker = gemini
	default:
		invoker, err = services.NewBedrockInvoker(ctx, services.BedrockConfig{
			ModelID:          cfg.LLM.ModelID,
			Region:           cfg.LLM.Region,
			AnthropicVersion: cfg.LLM.AnthropicVersion,
			AccessKey:        cfg.AWS.AccessKey,
			SecretKey:        cfg.AWS.SecretKey,
			Settings:         settings,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Bedrock client initialized (%s, %s)", cfg.LLM.ModelID, cfg.LLM.Region)
	}

	invoker = services.NewTimeoutInvoker(invoker, cfg.LLM.Timeout)
	invoker = services.NewRetryingInvoker(invoker, cfg.LLM.RetryMaxAttempts, cfg.LLM.RetryInitialDelay)

	parser, err := services.NewResponseParser(services.ExtractionMode(cfg.Screening.ParserMode))
	if err != nil {
		return nil, err
	}

	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		comps.History = repositories.NewScreeningRepository(db)
		if sqlDB, err := db.DB(); err == nil {
			comps.OnClose(sqlDB.Close)
		}
		log.Println("✅ Screening history enabled")
	}

	if cfg.Qdrant.Enabled {
		store, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			comps.Close()
			return nil, err
		}
		comps.OnClose(store.Close)

		if err := store.InitCollection(ctx); err != nil {
			comps.Close()
			return nil, err
		}
		comps.Index = services.NewCandidateIndex(store, gemini)
		log.Println("✅ Candidate index enabled")
	}

	exports, err := newExportStore(ctx, cfg)
	if err != nil {
		comps.Close()
		return nil, err
	}

	batches, err := newBatchStore(ctx, cfg)
	if err != nil {
		comps.Close()
		return nil, err
	}
	comps.OnClose(batches.Close)

	comps.Screener = services.NewScreeningService(services.ScreeningDeps{
		Catalog:    catalog,
		Extractor:  services.NewTextExtractor(),
		Invoker:    invoker,
		Parser:     parser,
		Aggregator: services.NewAggregator(cfg.Screening.HistogramBins, cfg.Screening.TopN),
		History:    comps.History,
		Index:      comps.Index,
		Exports:    exports,
		Batches:    batches,
		Provider:   cfg.LLM.Provider,
		Model:      cfg.ModelName(),
	})
	log.Println("✅ Screening service initialized")

	return comps, nil
}

func newExportStore(ctx context.Context, cfg *config.Config) (services.ExportStore, error) {
	switch cfg.Export.Store {
	case config.ExportStoreLocal:
		store, err := services.NewLocalExportStore(cfg.Export.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Exports archived to %s", cfg.Export.Path)
		return store, nil
	case config.ExportStoreS3:
		store, err := services.NewS3ExportStore(ctx, services.S3ExportConfig{
			Bucket:      cfg.Export.S3Bucket,
			EndpointURL: cfg.Export.S3Endpoint,
			Region:      cfg.LLM.Region,
			AccessKey:   cfg.AWS.AccessKey,
			SecretKey:   cfg.AWS.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Exports archived to s3://%s", cfg.Export.S3Bucket)
		return store, nil
	case config.ExportStoreNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown export store %q", cfg.Export.Store)
	}
}

func newBatchStore(ctx context.Context, cfg *config.Config) (services.BatchStore, error) {
	if cfg.Screening.BatchStore == config.BatchStoreRedis {
		store, err := services.NewRedisBatchStore(ctx, cfg.Screening.RedisURL, cfg.Screening.BatchTTL)
		if err != nil {
			return nil, err
		}
		log.Println("✅ Redis batch store connected")
		return store, nil
	}
	return services.NewMemoryBatchStore(cfg.Screening.BatchStoreCapacity), nil
}
