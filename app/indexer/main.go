package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/projectgen/config"
	"github.com/yoockh/projectgen/internal/cache"
	"github.com/yoockh/projectgen/internal/logger"
	"github.com/yoockh/projectgen/internal/providers/embedding"
	pgrepo "github.com/yoockh/projectgen/internal/repositories/postgres"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/storage"
	"github.com/yoockh/projectgen/internal/workers"
)

func main() {
	_ = godotenv.Load()
	parseFlags()

	cfg, err := config.LoadApp()
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	level := cfg.LogLevel
	if *logLevelFlag != "" {
		level = *logLevelFlag
	}
	l := logger.NewWithOutput(os.Stderr, level)

	source := *sourceFlag
	if source == "" {
		source = cfg.CatalogSource
	}
	if source == "" && !*schemaOnlyFlag {
		l.Fatal("no catalog source: pass --source or set CATALOG_SOURCE")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *enqueueFlag {
		if err := config.InitRedis(); err != nil {
			l.WithError(err).Fatal("Redis init error")
		}
		defer config.RedisClient.Close()

		pool := &workers.IndexWorkerPool{Redis: config.RedisClient, Logger: l}
		jobID, err := pool.Enqueue(ctx, source)
		if err != nil {
			l.WithError(err).Fatal("enqueue failed")
		}
		l.WithFields(logrus.Fields{"job_id": jobID, "source": source}).Info("reindex job queued")
		return
	}

	if err := config.InitPostgres(l); err != nil {
		l.WithError(err).Fatal("PostgreSQL init error")
	}

	genaiEmbed, err := embedding.NewGenAI(ctx, cfg.GenAIAPIKey, cfg.GCPProject, cfg.GCPLocation, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	if err != nil {
		l.WithError(err).Fatal("embedding init error")
	}
	// a certification listed under several services is embedded once per run
	embedder := embedding.WithCache(
		embedding.WithRetry(genaiEmbed, embedding.DefaultRetryPolicy(), l),
		cache.NewMemoryCache(), 0, l, embedding.TaskDocument,
	)

	sources := storage.Router{Local: storage.LocalReader{}}
	if isGCS(source) {
		gcs, err := storage.NewGCSReader(ctx)
		if err != nil {
			l.WithError(err).Fatal("GCS init error")
		}
		defer gcs.Close()
		sources.GCS = gcs
	}

	catalogSvc := services.NewCatalogService(pgrepo.NewCatalogRepo(config.PostgresDB), embedder, sources, cfg.EmbeddingDimensions, l)
	if err := catalogSvc.EnsureSchema(ctx); err != nil {
		l.WithError(err).Fatal("catalog schema error")
	}
	if *schemaOnlyFlag {
		l.Info("catalog schema ready")
		return
	}

	report, err := catalogSvc.Ingest(ctx, source)
	if err != nil {
		l.WithError(err).Fatal("catalog ingest failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}

func isGCS(source string) bool {
	_, _, err := storage.ParseGSURL(source)
	return err == nil
}
