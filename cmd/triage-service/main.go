package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/medilink-health/triage/pkg/common/config"
	"github.com/medilink-health/triage/pkg/common/database"
	"github.com/medilink-health/triage/pkg/common/kafka"
	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/gateway/middleware"
	"github.com/medilink-health/triage/pkg/kvstore"
	"github.com/medilink-health/triage/pkg/localization"
	"github.com/medilink-health/triage/pkg/observability/metrics"
	"github.com/medilink-health/triage/pkg/recommendation"
	"github.com/medilink-health/triage/pkg/triage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	kv, err := openKVStore(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to open key-value store")
	}
	defer database.CloseRedis()
	defer database.ClosePostgres()

	rules, err := triage.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load triage catalog")
	}

	dictionary, err := localization.LoadDictionary(cfg.DictionaryPath)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load dictionary, using built-in translations")
	}

	translator := localization.Translator(dictionary)
	if cfg.TranslatorBaseURL != "" {
		remote, err := localization.NewRemote(localization.RemoteConfig{
			BaseURL:      cfg.TranslatorBaseURL,
			TokenURL:     cfg.TranslatorTokenURL,
			ClientID:     cfg.TranslatorClientID,
			ClientSecret: cfg.TranslatorClientSecret,
			Timeout:      cfg.TranslationTimeout,
			Retries:      cfg.TranslatorRetries,
		})
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to configure remote translator")
		}
		// Only remote results are cached; dictionary fallbacks while the
		// remote is down must not outlive the outage.
		translator = localization.NewChain(localization.NewCached(remote), dictionary)
	}

	var events triage.EventPublisher
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.TriageEventsTopic)
		defer producer.Close()
		events = producer
	}

	store := triage.NewMappingStore(rules, kv)
	classifier := triage.NewClassifier(store, triage.DefaultClassifierConfig())
	composer := triage.NewComposer(translator, cfg.TranslationTimeout)
	engine := triage.NewEngine(store, classifier, composer, events)

	handler := triage.NewHTTPHandler(engine, recommendation.NewStore(kv), cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.CORS)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(r.Context()); err != nil {
			logger.Log.WithError(err).Warn("readiness check failed")
			http.Error(w, `{"status":"storage unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst), middleware.BodyLimit(cfg.MaxRequestBody))
	handler.Register(api, middleware.AdminToken(cfg.AdminTokenHash))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":       cfg.ServerHost,
			"port":       cfg.ServerPort,
			"kv_backend": cfg.KVBackend,
			"rules":      len(rules),
		}).Info("Triage Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	if len(cfg.KafkaBrokers) > 0 {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.MappingCommandsTopic, cfg.KafkaGroupID)
		defer consumer.Close()

		go func() {
			if err := consumer.Consume(ctx, engine.HandleCommand); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.WithError(err).Error("mapping command consumer stopped")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Triage Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Triage Service stopped")
}

func openKVStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.KVBackend {
	case "", "memory":
		logger.Log.Warn("using in-memory store, mapping edits are lost on restart")
		return kvstore.NewMemory(), nil
	case "redis":
		client, err := database.GetRedis(cfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return kvstore.NewRedis(client, "triage:"), nil
	case "postgres":
		db, err := database.GetPostgres(cfg)
		if err != nil {
			return nil, err
		}
		store := kvstore.NewPostgres(db)
		if err := store.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("migrating kv table: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
	}
}
