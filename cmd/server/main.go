package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/adapter/embedder"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/adapter/extractor"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/adapter/handler"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/adapter/storage"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/config"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/classify"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/service"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/logger"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput}); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	// Optional MySQL archive
	var db *sql.DB
	var archive port.ArchiveRepository
	queueSize := 0
	if cfg.MySQLDSN != "" {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect mysql")
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping mysql")
		}
		archive = storage.NewMySQLArchive(db)
		queueSize = cfg.ArchiveQueueSize
		log.Info().Msg("connected to mysql, archiving enabled")
	}

	// Embed the example set once; the classifier is read-only afterwards.
	ollama := embedder.NewOllama(embedder.Config{BaseURL: cfg.OllamaURL, Model: cfg.EmbedModel})
	classifier, err := classify.New(ctx, ollama, classify.DefaultExamples())
	if err != nil {
		log.Fatal().Err(err).Str("model", ollama.Model()).Msg("failed to embed example set")
	}
	log.Info().Str("model", ollama.Model()).Int("dimensions", ollama.Dimensions()).Msg("example index built")

	pdfExtractor := extractor.NewPDFExtractor(extractor.Config{
		Tesseract: cfg.Tesseract,
		Lang:      cfg.OCRLang,
		DPI:       cfg.OCRDPI,
		MaxPages:  cfg.MaxPages,
	}, nil, logger.WithComponent("extractor"))

	// Initialize services
	inventoryService := service.NewInventoryService(storage.NewRedisInventory(rdb))
	documentService := service.NewDocumentService(
		pdfExtractor,
		classifier,
		storage.NewRedisResults(rdb),
		cfg.UploadDir,
		queueSize,
		logger.WithComponent("documents"),
	)

	// Start archive workers
	var wg sync.WaitGroup
	if archive != nil {
		for i := 0; i < cfg.ArchiveWorkers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				archiveLoop(id, documentService.ArchiveQueue(), archive)
			}(i)
		}
		log.Info().Int("workers", cfg.ArchiveWorkers).Msg("started archive workers")
	}

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(inventoryService, documentService, logger.WithComponent("http"))
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("HTTP server stopped")

	// Close archive queue and wait for workers
	documentService.Close()
	wg.Wait()
	log.Info().Msg("workers stopped")

	rdb.Close()
	if db != nil {
		db.Close()
	}
	log.Info().Msg("connections closed")
}

func archiveLoop(id int, queue <-chan domain.ArchiveRecord, archive port.ArchiveRepository) {
	for record := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := archive.CreateRecord(ctx, record); err != nil {
			log.Error().Err(err).Int("worker", id).Str("filename", record.Filename).Msg("failed to archive result")
		} else {
			log.Debug().Int("worker", id).Str("filename", record.Filename).Msg("archived result")
		}

		cancel()
	}
}
