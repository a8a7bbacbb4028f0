/*
Package main is the entry point for the BioChat server.

It loads configuration, initializes the global logger, wires the oracle, the store and
the event-stream Hub into the HTTP server, and shuts everything down gracefully on
SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biochat/internal/app/chat"
	"biochat/internal/app/oracle"
	"biochat/internal/app/store"
	"biochat/internal/configs"
	"biochat/internal/handler"
	"biochat/internal/pkg/logx"
	"biochat/internal/pkg/pow"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("pow_difficulty", cfg.PowDifficulty).
		Bool("admin_bypass", cfg.AdminBypass).
		Bool("oracle_configured", cfg.GenAIAPIKey != "").
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := oracle.NewTextGenerator(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, cfg.OracleTimeout)
	if err != nil {
		logx.Fatal(err, "Failed to initialize oracle")
	}
	if gen == nil {
		logx.Warn("API_KEY not set, oracle runs in fallback-only mode")
	} else {
		logx.Info("Oracle configured", "generator", gen.Name())
	}

	hub := chat.NewHub()

	st := store.New(oracle.NewIdentityGenerator(gen), oracle.NewReplyOracle(gen), store.Options{
		AdminBypass:   cfg.AdminBypass,
		ReplyDelayMin: cfg.ReplyDelayMin,
		ReplyDelayMax: cfg.ReplyDelayMax,
		Notifier:      hub,
	})

	powManager := pow.NewManager(cfg.PowDifficulty)
	limiters := handler.NewLimiters()

	router := handler.Router(&handler.AppDeps{
		Store:    st,
		Hub:      hub,
		Config:   cfg,
		PoW:      powManager,
		Limiters: limiters,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("BioChat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	hub.Shutdown()
	st.Shutdown()
	powManager.Stop()
	limiters.Stop()

	logx.Info("Server gracefully stopped.")
}
