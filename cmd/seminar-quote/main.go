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

	"github.com/nurpe/seminar-quote/internal/auth"
	"github.com/nurpe/seminar-quote/internal/config"
	"github.com/nurpe/seminar-quote/internal/db"
	"github.com/nurpe/seminar-quote/internal/excel"
	httphandler "github.com/nurpe/seminar-quote/internal/http"
	"github.com/nurpe/seminar-quote/internal/http/middleware"
	"github.com/nurpe/seminar-quote/internal/logger"
	"github.com/nurpe/seminar-quote/internal/mail"
	"github.com/nurpe/seminar-quote/internal/pdf"
	"github.com/nurpe/seminar-quote/internal/pricing"
	"github.com/nurpe/seminar-quote/internal/repository"
	"github.com/nurpe/seminar-quote/internal/service"
	"github.com/nurpe/seminar-quote/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	var (
		cacheStore  pricing.Store
		bookingRepo service.BookingRepository
	)
	if cfg.DB.DSN != "" {
		database, err := db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		cacheStore = repository.NewCacheRepository(database)
		bookingRepo = repository.NewBookingRepository(database)
	} else {
		log.Warn().Msg("DB_DSN not set, price cache and booking log are kept in memory")
		cacheStore = pricing.NewMemoryStore()
		bookingRepo = repository.NewMemoryBookingRepository()
	}

	resolver := pricing.NewResolverFromConfig(cfg.Prices, cacheStore, nil, log)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	var archive storage.Archiver
	if cfg.Archive.Enabled() {
		s3Archive, err := storage.NewS3Archive(context.Background(), cfg.Archive)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init document archive")
		}
		archive = s3Archive
	}

	priceService := service.NewPriceService(resolver, excelGenerator)
	quoteService := service.NewQuoteService(resolver, excelGenerator)
	bookingService := service.NewBookingService(
		resolver,
		bookingRepo,
		pdfGenerator,
		excelGenerator,
		mail.NewSender(cfg.Mail, log),
		archive,
		cfg,
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(priceService, quoteService, bookingService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins, log)

	// warm the session table in the background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Prices.FetchTimeout*2)
		defer cancel()
		res := resolver.Resolve(ctx)
		log.Info().Str("origin", string(res.Origin)).Msg("price table loaded")
	}()

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting seminar quote service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
