package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensetracker/internal/cli"
	"expensetracker/internal/gateway"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/localstore"
	"expensetracker/internal/remote"
	"expensetracker/internal/session"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(logger.Logger)
	if err != nil {
		os.Exit(1)
	}

	store, err := localstore.Open(localstore.Config{
		Backend:    localstore.Backend(cfg.LocalBackend),
		DataDir:    cfg.LocalDataDir,
		SQLitePath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to open local store", "error", err, "backend", cfg.LocalBackend)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Initialized local store", "backend", cfg.LocalBackend)

	sess, err := session.New(store)
	if err != nil {
		logger.Error("Failed to load session state", "error", err)
		os.Exit(1)
	}

	// Any 401 from the remote clears the session; the web layer then
	// redirects to the login view.
	client := remote.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, sess.Token, func() {
		logger.Warn("Remote rejected credentials, clearing session")
		if err := sess.Clear(); err != nil {
			logger.Error("Failed to clear session", "error", err)
		}
	})

	gw := gateway.New(client, store, sess)

	srv := apphttp.NewServer(":"+cfg.Port, gw, gw, gw, cfg.CacheSize, cfg.CacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting expensetracker server", "port", cfg.Port, "api_base_url", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
