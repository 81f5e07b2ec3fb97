package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittohttp/internal/logger"
	"github.com/marmos91/dittohttp/pkg/config"
	"github.com/marmos91/dittohttp/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/dittohttp/config.yaml)")
	initOnly := flag.Bool("init", false, "Write a default config file and exit")
	force := flag.Bool("force", false, "With -init, overwrite an existing config file")
	logLevel := flag.String("log-level", "", "Override logging.level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	if *initOnly {
		if err := initConfig(*configPath, *force); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath, *logLevel); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func initConfig(path string, force bool) error {
	if path == "" {
		written, err := config.InitConfig(force)
		if err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", written)
		return nil
	}

	if err := config.InitConfigAt(path, force); err != nil {
		return err
	}
	fmt.Printf("Config written to %s\n", path)
	return nil
}

func run(configPath, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		return err
	}

	fmt.Println("DittoHTTP - Static File Server")
	fmt.Print(config.RunningSummary(cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := config.CreateStatsStore(ctx, &cfg.Stats)
	if err != nil {
		return fmt.Errorf("failed to create stats store: %w", err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close stats store: %v", err)
			}
		}()
	}

	metricsResult := config.InitializeMetrics(cfg, store)

	adapters, err := config.CreateAdapters(cfg, metricsResult.HTTPMetrics)
	if err != nil {
		return err
	}

	srv := server.New(store, cfg.Server.ShutdownTimeout)
	for _, a := range adapters {
		if err := srv.AddAdapter(a); err != nil {
			return fmt.Errorf("failed to register adapter: %w", err)
		}
	}

	metricsDone := make(chan error, 1)
	if metricsResult.Server != nil {
		go func() {
			metricsDone <- metricsResult.Server.Start(ctx)
		}()
	} else {
		close(metricsDone)
	}

	logger.Info("Server is running. Press Ctrl+C to stop.")

	serveErr := srv.Serve(ctx)

	// Serve also returns on adapter failure; make sure the metrics server follows.
	cancel()
	if err := <-metricsDone; err != nil {
		logger.Error("Metrics server error: %v", err)
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return serveErr
	}

	logger.Info("Server stopped gracefully")
	return nil
}
