package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/signal-timing/internal/history"
	"github.com/iwvelando/signal-timing/internal/logging"
	"github.com/iwvelando/signal-timing/internal/server"
	"github.com/iwvelando/signal-timing/internal/simulation"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override, e.g. :8080")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		logging.WriteFatal(os.Stdout, "failed to load server configuration", err, zap.String("config", *configLocation))
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.NewLogger(cfg.Logging, *logLevel)
	if err != nil {
		logging.WriteFatal(os.Stdout, "failed to initialize logger", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	optimizerOptions, err := cfg.Optimizer.Options()
	if err != nil {
		logger.Fatal("failed to configure optimizer",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	repo, err := history.Open(logger, cfg.History.Options())
	if err != nil {
		logger.Warn("history unavailable",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if repo != nil {
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Warn("failed to close history",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}()
	}

	runner := simulation.NewRunner(logger, simulation.WithOptimizerOptions(optimizerOptions))
	handler := server.NewHandler(logger, runner, history.NewRecorder(logger, repo), cfg.BodySizeBytes(), version)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySize", cfg.BodySizeBytes()),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}
