package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/switchgear-extractor/internal/config"
	"github.com/a3tai/switchgear-extractor/internal/logging"
	"github.com/a3tai/switchgear-extractor/internal/mcp"
	"github.com/a3tai/switchgear-extractor/internal/metrics"
	"github.com/a3tai/switchgear-extractor/internal/pdf"
	"github.com/a3tai/switchgear-extractor/internal/pipeline"
	"github.com/a3tai/switchgear-extractor/internal/server"
	"go.uber.org/zap"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the logger for the configured mode. In stdio mode
// logs go to stderr so they never interleave with the MCP protocol.
func setupLogging(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: logging.OutputForMode(cfg.Mode),
		Fields: map[string]string{
			"service": cfg.ServerName,
			"version": cfg.Version,
		},
	})
}

// newPipeline builds the extraction pipeline shared by both modes
func newPipeline(cfg *config.Config, logger *zap.Logger, source string) (*pipeline.Service, error) {
	return pipeline.New(pipeline.Options{
		Rules:           cfg.Rules(),
		WordOptions:     cfg.WordOptions(),
		OutputDirectory: cfg.OutputDirectory,
		Logger:          logger,
		Recorder:        metrics.NewRecorder(source),
	})
}

// runServerMode serves the HTTP upload endpoint until ctx is canceled
func runServerMode(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	svc, err := newPipeline(cfg, logger, "http")
	if err != nil {
		return err
	}

	srv, err := server.New(svc, pdf.NewValidator(cfg.MaxFileSize), server.Options{
		ServiceName: cfg.ServerName,
		CORSOrigin:  cfg.CORSOrigin,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	if err := srv.Run(ctx, cfg.Address()); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// runStdioMode serves the MCP tools; the parent process controls our lifecycle
func runStdioMode(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	svc, err := newPipeline(cfg, logger, "mcp")
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return srv.Run(ctx)
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.IsServerMode() {
		return runServerMode(ctx, cfg, logger)
	}
	return runStdioMode(ctx, cfg, logger)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(os.Stdout)
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Switchgear Extractor\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
