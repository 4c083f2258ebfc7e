package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/projectgen/config"
	"github.com/yoockh/projectgen/internal/api/handlers"
	"github.com/yoockh/projectgen/internal/api/middleware"
	"github.com/yoockh/projectgen/internal/api/routes"
	"github.com/yoockh/projectgen/internal/cache"
	"github.com/yoockh/projectgen/internal/logger"
	"github.com/yoockh/projectgen/internal/providers/embedding"
	"github.com/yoockh/projectgen/internal/providers/llm"
	"github.com/yoockh/projectgen/internal/providers/stt"
	mongorepo "github.com/yoockh/projectgen/internal/repositories/mongo"
	pgrepo "github.com/yoockh/projectgen/internal/repositories/postgres"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/storage"
	"github.com/yoockh/projectgen/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	l := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.InitPostgres(l); err != nil {
		l.WithError(err).Fatal("PostgreSQL init error")
	}
	l.Info("PostgreSQL connected")

	if err := config.InitMongo(); err != nil {
		l.WithError(err).Fatal("MongoDB init error")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		l.WithError(err).Fatal("MongoDB index error")
	}
	l.Info("MongoDB connected")

	if err := config.InitRedis(); err != nil {
		l.WithError(err).Fatal("Redis init error")
	}
	l.Info("Redis connected")

	redisCache := cache.NewRedisCache(config.RedisClient, "projectgen")

	// providers
	genaiEmbed, err := embedding.NewGenAI(ctx, cfg.GenAIAPIKey, cfg.GCPProject, cfg.GCPLocation, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	if err != nil {
		l.WithError(err).Fatal("embedding init error")
	}
	embedder := embedding.WithCache(
		embedding.WithRetry(genaiEmbed, embedding.DefaultRetryPolicy(), l),
		redisCache, 24*time.Hour, l,
	)

	chat, err := llm.NewVertexGemini(ctx, cfg.GCPProject, cfg.GCPLocation, cfg.CompletionModel)
	if err != nil {
		l.WithError(err).Fatal("vertex init error")
	}
	defer chat.Close()

	sources := storage.Router{Local: storage.LocalReader{}}
	if gcs, err := storage.NewGCSReader(ctx); err != nil {
		l.WithError(err).Warn("GCS client unavailable; gs:// catalog sources disabled")
	} else {
		defer gcs.Close()
		sources.GCS = gcs
	}

	// repositories
	catalogRepo := pgrepo.NewCatalogRepo(config.PostgresDB)
	keyRepo := pgrepo.NewFunctionKeyRepo(config.PostgresDB)
	generationRepo := mongorepo.NewGenerationRepo(config.MongoDatabase())

	// services
	catalogSvc := services.NewCatalogService(catalogRepo, embedder, sources, cfg.EmbeddingDimensions, l)
	if err := catalogSvc.EnsureSchema(ctx); err != nil {
		l.WithError(err).Fatal("catalog schema error")
	}

	searchSvc := services.NewSearchService(embedder, catalogRepo)
	generationSvc := services.NewGenerationService(generationRepo, cfg.GenerationTTL)
	projectSvc := services.NewProjectService(searchSvc, chat, generationSvc, redisCache, services.ProjectOptions{
		TopK:           cfg.SearchTopK,
		MaxPromptChars: cfg.MaxPromptChars,
		CacheTTL:       cfg.ProjectCacheTTL,
	}, l)
	keySvc := services.NewFunctionKeyService(keyRepo)

	var voiceHandler *handlers.VoiceHandler
	if cfg.SpeechEnabled {
		speech, err := stt.NewGoogleSpeech(ctx, stt.CloudPhrases...)
		if err != nil {
			l.WithError(err).Fatal("speech init error")
		}
		defer speech.Close()
		voiceHandler = handlers.NewVoiceHandler(services.NewVoiceService(speech, projectSvc))
	}

	// index workers
	pool := &workers.IndexWorkerPool{
		Redis:         config.RedisClient,
		Catalog:       catalogSvc,
		NumWorkers:    cfg.IndexWorkers,
		Logger:        l,
		DefaultSource: cfg.CatalogSource,
	}
	if err := pool.Start(ctx); err != nil {
		l.WithError(err).Fatal("index worker error")
	}
	go workers.RunScheduler(ctx, pool, cfg.CatalogSource, cfg.IndexScheduleInterval, l)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Project:     handlers.NewProjectHandler(projectSvc),
		Voice:       voiceHandler,
		Search:      handlers.NewSearchHandler(searchSvc, cfg.SearchTopK),
		Generations: handlers.NewGenerationHandler(generationSvc),
		WS:          handlers.NewWSHandler(projectSvc, l),
		Catalog:     handlers.NewCatalogHandler(catalogSvc, pool, cfg.CatalogSource, config.RedisClient, workers.DefaultStatusChannel),
		Keys:        handlers.NewKeyHandler(keySvc),
		AuthLevel:   cfg.FunctionAuthLevel,
		Verifier:    keySvc,
		JWT:         middleware.JWTConfigFromEnv(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.WithError(err).Fatal("http server error")
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.WithError(err).Warn("http shutdown error")
	}
	if err := config.CloseMongo(shutdownCtx); err != nil {
		l.WithError(err).Warn("mongo disconnect error")
	}
	_ = config.RedisClient.Close()
}
