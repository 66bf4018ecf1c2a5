package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/semiha11/Fincio/internal/config"
	"github.com/semiha11/Fincio/internal/dispatch"
	"github.com/semiha11/Fincio/internal/docstore"
	"github.com/semiha11/Fincio/internal/handler"
	"github.com/semiha11/Fincio/internal/integrations/quotes"
	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/repository"
	"github.com/semiha11/Fincio/internal/service"
	"github.com/semiha11/Fincio/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var (
		users   service.UserStore
		kv      service.KVFactory
		quoteKV quotes.Cache
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store := repository.NewMemoryStore()
		users = store
		kv = func(ns string) ledger.KV { return store.KV(ns) }
		quoteKV = store.KV("quotes")
		logger.Warn("Using in-memory storage, data is lost on restart")
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		repo := repository.NewRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		users = repo
		kv = func(ns string) ledger.KV { return repo.KV(ns) }
		quoteKV = repo.KV("quotes")
	}

	// Market data
	var quoteOpts []quotes.Option
	if cfg.QuoteCurrencySource == config.CurrencySourceCentralBank {
		quoteOpts = append(quoteOpts, quotes.WithExchangeSource(quotes.NewCentralBankSource(cfg.CentralBankURL, logger)))
	}
	quoteClient := quotes.NewClient(quotes.NewCollectAPISource(cfg.QuoteBaseURL, cfg.QuoteAPIKey, logger), quoteKV, logger, quoteOpts...)

	// Background sync
	queue := dispatch.NewQueue(logger, 512, 4, 15*time.Second)
	queue.Start(ctx)
	defer queue.Stop()

	var opts []service.Option
	if cfg.SyncEnabled() {
		store, err := docstore.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, logger)
		if err != nil {
			logger.Fatalf("Failed to init document store: %v", err)
		}
		opts = append(opts, service.WithMirror(store, queue))
		logger.Info("Remote sync enabled")
	}
	if cfg.EmailEnabled() {
		opts = append(opts, service.WithMailer(email.NewSender(cfg, logger)))
	}

	// Initialize layers
	svc := service.NewService(users, kv, quoteClient, logger, cfg, opts...)
	h := handler.NewHandler(svc, logger)

	scheduler := cron.New()
	if err := svc.Schedule(ctx, scheduler); err != nil {
		logger.Fatalf("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
