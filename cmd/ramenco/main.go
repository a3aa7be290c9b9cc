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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ramenco/internal/config"
	"ramenco/internal/dodo"
	"ramenco/internal/handler"
	"ramenco/internal/service"
	"ramenco/internal/signature"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dodoClient := dodo.NewClient(cfg.DodoAPIBase, cfg.DodoAPIKey)

	// Billing country validation falls back to the default country when the
	// lookup fails; checkout must not depend on this call succeeding.
	ctxCountries, cancelCountries := context.WithTimeout(context.Background(), 10*time.Second)
	countries, err := dodoClient.ListSupportedCountries(ctxCountries)
	cancelCountries()
	if err != nil {
		slog.Error("supported countries lookup failed", "error", err)
	}

	recorder, err := service.NewSheetsRecorder(cfg.GoogleServiceAccountEmail, cfg.GooglePrivateKey, cfg.GoogleSheetID)
	if err != nil {
		slog.Error("failed to init sheets recorder", "error", err)
		os.Exit(1)
	}

	mailer := service.NewMailer(cfg.BrevoAPIKey)

	verifier, err := signature.NewVerifier(cfg.DodoWebhookSecret)
	if err != nil {
		slog.Error("failed to init webhook verifier", "error", err)
		os.Exit(1)
	}

	// Services
	checkoutSvc := service.NewCheckoutService(dodoClient, cfg, countries)
	webhookSvc := service.NewWebhookService(verifier, recorder, mailer)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/payments", handler.CreatePaymentHandler(checkoutSvc))
	r.Get("/payments/redirect", handler.CheckoutRedirectHandler(checkoutSvc))
	r.HandleFunc("/payments/webhook", handler.WebhookHandler(webhookSvc))
	r.Get("/confirmed", handler.ConfirmationHandler())

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "env", cfg.Env)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
