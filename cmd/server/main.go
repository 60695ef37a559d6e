package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"CapeTravel/internal/api/middleware"
	"CapeTravel/internal/api/routes"
	"CapeTravel/internal/auth"
	"CapeTravel/internal/config"
	"CapeTravel/internal/core/catalogue"
	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/core/reactions"
	"CapeTravel/internal/core/viewport"
	"CapeTravel/internal/db/migrations"
	postgresRepo "CapeTravel/internal/db/postgres"
	"CapeTravel/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	catalogueRepo, reactionRepo, closeDB := openStores(cfg.Database, logger)
	defer closeDB()

	tokens, err := auth.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token service")
	}

	cookieStore, err := identity.NewCookieStore(cfg.Identity.CookieSecret, cfg.Identity.CookieSecure, cfg.Identity.CookieMaxAge)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cookie store")
	}

	fitter := viewport.Fitter{
		Anchor:         viewport.LatLng{Lat: cfg.Viewport.DefaultLatitude, Lng: cfg.Viewport.DefaultLongitude},
		Zoom:           cfg.Viewport.DefaultZoom,
		MaxSpanDegrees: cfg.Viewport.MaxSpanDegrees,
		Padding:        cfg.Viewport.Padding,
	}

	catalogueService := catalogue.NewService(catalogueRepo, fitter, logging.Component("catalogue"))
	reactionService := reactions.NewService(reactionRepo, catalogue.NewSubjectValidator(catalogueService), logging.Component("reactions"))

	handler := routes.NewRouter(routes.Services{
		Reactions:      reactionService,
		Catalogue:      catalogueService,
		AuthMiddleware: middleware.NewAuthMiddleware(cookieStore, cfg.Identity.CookieName, tokens, logging.Component("identity")),
		Logger:         logging.Component("http"),
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("CapeTravel API starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStores connects to Postgres when a URL is configured, otherwise it
// falls back to in-process stores seeded with the starter catalogue.
func openStores(cfg config.DatabaseConfig, logger zerolog.Logger) (catalogue.Repository, reactions.Repository, func()) {
	if cfg.URL == "" {
		logger.Warn().Msg("no database configured, using in-memory stores")
		return catalogue.NewMemoryRepository(catalogue.SeedPlaces(), nil), reactions.NewMemoryStore(), func() {}
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping database")
	}
	logger.Info().Msg("connected to database")

	if cfg.Migrate {
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			logger.Fatal().Err(err).Msg("failed to set goose dialect")
		}
		if err := goose.Up(db, "."); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		logger.Info().Msg("migrations completed")
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}
	return postgresRepo.NewCatalogueRepository(db), postgresRepo.NewReactionRepository(db, logging.Component("postgres")), closeDB
}
