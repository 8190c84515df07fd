package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"github.com/thingbox/thingbox-go/internal/auth"
	"github.com/thingbox/thingbox-go/internal/backup"
	"github.com/thingbox/thingbox-go/internal/cache"
	"github.com/thingbox/thingbox-go/internal/config"
	"github.com/thingbox/thingbox-go/internal/crypto"
	"github.com/thingbox/thingbox-go/internal/handler"
	"github.com/thingbox/thingbox-go/internal/middleware"
	"github.com/thingbox/thingbox-go/internal/model"
	"github.com/thingbox/thingbox-go/internal/repository"
	"github.com/thingbox/thingbox-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	box, err := crypto.NewSealedBox(cfg.PrivateKeyB58)
	if err != nil {
		slog.Error("invalid private key", "error", err)
		os.Exit(1)
	}

	db, err := repository.Open(cfg.DatabaseFile)
	if err != nil {
		slog.Error("opening database failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := repository.NewStore(db, box, cfg.IDLengthBytes)
	if err != nil {
		slog.Error("initializing store failed", "error", err)
		os.Exit(1)
	}

	// Background tasks stop when this context is cancelled on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var backups *backup.Scheduler
	if cfg.BackupDir != "" {
		backups = backup.NewScheduler(backup.Config{
			Dir:          cfg.BackupDir,
			TmpDir:       cfg.BackupTmpDir,
			Interval:     cfg.BackupInterval,
			OnBatchClose: cfg.BackupOnBatchClose,
		}, store)
		go backups.Run(ctx)
	}

	provider := auth.NewOAuth2Provider(cfg.ProviderName, &oauth2.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURL:  cfg.APIBaseURL + "/auth-complete",
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.OAuthAuthURL,
			TokenURL: cfg.OAuthTokenURL,
		},
	}, cfg.OAuthUserInfoURL, cfg.OAuthIDField, cfg.OAuthUsernameField)

	pending := cache.NewTTL[time.Time](cfg.MaxAuthAttempts, cfg.AuthTimeout)
	sessions := cache.NewTTL[*auth.Session](cfg.MaxSessions, cfg.SessionTTL)
	adminTokens := cache.NewTTL[*auth.Session](cfg.MaxAdminTokens, cfg.AdminTTL)

	templates, err := cache.NewTemplateCache(cfg.TemplateCacheSize, func(ctx context.Context, id string) (string, error) {
		return store.GetTemplate(ctx, id, model.TemplateKindItem)
	})
	if err != nil {
		slog.Error("initializing template cache failed", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(provider, store, pending, sessions, adminTokens, cfg.TokenLengthBytes)
	contentService := service.NewContentService(store, templates, box, backups)
	templateService := service.NewTemplateService(store, templates)

	authHandler := handler.NewAuthHandler(authService, cfg.AppBaseURL)
	itemsHandler := handler.NewItemsHandler(contentService)
	templatesHandler := handler.NewTemplatesHandler(templateService)
	keyHandler := handler.NewKeyHandler(box)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/public-key", keyHandler.HandlePublicKey)
	r.Get("/site-content", templatesHandler.HandleSiteContent)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Get("/auth", authHandler.HandleBegin)
		r.Get("/auth-complete", authHandler.HandleComplete)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(authService))
		r.Get("/user", authHandler.HandleUser)
		r.Get("/items", itemsHandler.HandleFetch)
		r.Get("/admin-token", authHandler.HandleAdminToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(authService))
		r.Post("/items", itemsHandler.HandleSubmit)
		r.Get("/templates", templatesHandler.HandleList)
		r.Get("/templates/{id}", templatesHandler.HandleGet)
		r.Post("/templates/{id}", templatesHandler.HandleCreate)
		r.Put("/templates/{id}", templatesHandler.HandleUpdate)
		r.Post("/templates/cache/clear", templatesHandler.HandleClearCache)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
