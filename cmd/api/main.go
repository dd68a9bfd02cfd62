package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olehvasyliv/cooking-corner/internal/config"
	"github.com/olehvasyliv/cooking-corner/internal/db"
	"github.com/olehvasyliv/cooking-corner/internal/jobs"
	"github.com/olehvasyliv/cooking-corner/internal/logger"
	"github.com/olehvasyliv/cooking-corner/internal/mail"
	"github.com/olehvasyliv/cooking-corner/internal/middleware"
	"github.com/olehvasyliv/cooking-corner/internal/service"
	"github.com/olehvasyliv/cooking-corner/internal/sitemap"
	"github.com/olehvasyliv/cooking-corner/internal/storage"

	"github.com/olehvasyliv/cooking-corner/internal/auth"
)

// tokenTTL is how long a session token stays valid.
const tokenTTL = 7 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() { _ = dbClient.Close(context.Background()) }()

	if err := dbClient.CreateIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	stores := service.NewStores(dbClient)
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, tokenTTL)
	uploads := storage.New(cfg.UploadsDir, log)
	mailer := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})

	sitemapGen := sitemap.New(cfg.SiteURL, stores.Recipes, log)
	if err := sitemapGen.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("initial sitemap generation failed")
	}

	runner := jobs.New(jobs.Config{
		Pending: stores.Pending,
		Codes:   stores.Codes,
		Banned:  stores.Banned,
		Recipes: stores.Recipes,
		Subs:    stores.Subscriptions,
		Uploads: uploads,
		Mailer:  mailer,
		Sitemap: sitemapGen,
		SiteURL: cfg.SiteURL,
		Logger:  log,
	})
	runner.Start(ctx)

	// small burst so a user retrying a typo is not locked out instantly
	limiter := middleware.NewLimiterStore(cfg.AuthRateRPM, 3, time.Minute)
	defer limiter.Stop()

	app := &api{
		logger:        log,
		jwt:           jwtMgr,
		accounts:      service.NewAccounts(stores, jwtMgr, mailer, uploads, log),
		recipes:       service.NewRecipes(stores, uploads, log),
		comments:      service.NewComments(stores, log),
		favorites:     service.NewFavorites(stores),
		subscriptions: service.NewSubscriptions(stores),
		moderation:    service.NewModeration(stores),
		sitemap:       sitemapGen,
		limiter:       limiter,
		uploadsRoot:   cfg.UploadsDir,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exit")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
