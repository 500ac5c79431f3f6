// main.go - payrolld entrypoint.
//
// payrolld hosts the confidential payroll ledger behind an HTTP API. State
// lives in badger (or memory for throwaway runs); ciphertext handling is
// delegated to the in-process compute service.

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"payroll/internal/confidential"
	"payroll/internal/payroll"
	"payroll/internal/store"
	"payroll/internal/transfer"
)

const version = "0.3.0"

func main() {
	root := &cobra.Command{
		Use:   "payrolld",
		Short: "Confidential payroll ledger daemon",
	}
	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to payrolld.yaml")

	run := &cobra.Command{
		Use:   "run",
		Short: "Start the ledger daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			return runDaemon(cfg)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the daemon version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("payrolld %s\n", version)
		},
	}

	root.AddCommand(run, versionCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cfg *Config) error {
	logger := newLogger(cfg.LogLevel)

	var st store.Store
	switch cfg.Backend {
	case "memory":
		st = store.NewMemory()
	default:
		var err error
		st, err = store.OpenBadger(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
	}
	defer st.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := NewMetrics(registry)

	// The signing authority gates the final transfer decrypt inside the
	// compute service; it never appears in responses or logs.
	auth := confidential.Authorization(cfg.Authority + "/signing")
	engine := confidential.NewServiceEngine(auth)
	rails := transfer.NewBook()
	confRails := transfer.NewConfidentialBook(engine)

	ledger := payroll.New(payroll.Config{
		Store:         st,
		Engine:        engine,
		Rails:         rails,
		Confidential:  confRails,
		Logger:        logger,
		Events:        metrics.EventSink(),
		Cooldown:      cfg.CooldownSeconds,
		Authorization: auth,
	})

	var limiter *ClientRateLimiter
	if !cfg.RateLimitDisabled {
		limiter = NewClientRateLimiter(cfg.RateLimitBurst, cfg.RateLimitPerMin)
	}

	srv := NewServer(ledger, engine, logger, metrics, limiter, registry)
	httpSrv := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.ListenAddress).
			Str("backend", cfg.Backend).
			Str("version", version).
			Msg("payrolld listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("payrolld stopped")
	return nil
}
