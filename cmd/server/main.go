package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kmoroz/storefront/internal/config"
	"github.com/kmoroz/storefront/internal/es"
	"github.com/kmoroz/storefront/internal/events"
	"github.com/kmoroz/storefront/internal/handlers"
	"github.com/kmoroz/storefront/internal/httpserver"
	"github.com/kmoroz/storefront/internal/logging"
	"github.com/kmoroz/storefront/internal/mailer"
	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/service"
	"github.com/kmoroz/storefront/internal/tokens"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	db, err := config.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, events disabled")
	}

	var esClient *es.Indexer
	var searchClient *handlers.SearchHandler
	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		esClient = es.NewIndexer(client)
		searchClient = &handlers.SearchHandler{ES: client, Index: es.ProductIndex}
	} else {
		logger.Warn("ES_URL not set, search disabled")
		searchClient = &handlers.SearchHandler{}
	}

	var mail *mailer.Client
	if cfg.MailAPIKey != "" {
		mail = mailer.New(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailSender)
	} else {
		logger.Warn("MAIL_API_KEY not set, welcome mail disabled")
	}

	codec := tokens.NewCodec(cfg.JWTSecret)
	store := repo.New(db)
	authSvc := &service.AuthService{
		Store:    store,
		Codec:    codec,
		Producer: producer,
		Mailer:   mail,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Codec:           codec,
		AuthHandler:     &handlers.AuthHandler{Svc: authSvc, Users: store},
		ProductHandler:  &handlers.ProductHandler{Repo: store, Producer: producer, Indexer: esClient},
		CategoryHandler: &handlers.CategoryHandler{Repo: store},
		CartHandler:     &handlers.CartHandler{Repo: store, Producer: producer},
		WishlistHandler: &handlers.WishlistHandler{Repo: store},
		OrderHandler:    &handlers.OrderHandler{Repo: store, Producer: producer},
		ReviewHandler:   &handlers.ReviewHandler{Repo: store},
		UserHandler:     &handlers.UserAdminHandler{Repo: store, Svc: authSvc},
		SearchHandler:   searchClient,
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "addr", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
