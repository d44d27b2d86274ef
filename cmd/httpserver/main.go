package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruteri/celia-media/cmd/flags"
	"github.com/ruteri/celia-media/common"
	"github.com/ruteri/celia-media/config"
	"github.com/ruteri/celia-media/gateway"
	"github.com/ruteri/celia-media/httpserver"
	"github.com/ruteri/celia-media/metrics"
	"github.com/ruteri/celia-media/storage"
	"github.com/ruteri/celia-media/tracing"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "celia-media",
		Usage:   "Serve objects from S3-compatible buckets by redirect or proxy",
		Version: common.Version,
		Flags:   append([]cli.Flag{flags.ConfigFlag, flags.ListenAddrFlag}, flags.CommonFlags...),
		Action:  runServer,
		Commands: []*cli.Command{
			{
				Name:   "check-config",
				Usage:  "Load the configuration, resolve credentials and build all clients, then exit",
				Flags:  append([]cli.Flag{flags.ConfigFlag}, flags.LogFlags...),
				Action: checkConfig,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadRegistry loads the config file, resolves every credential and builds
// the tenant registry. Any failure here is fatal.
func loadRegistry(ctx context.Context, path string, logger *slog.Logger) (*config.AppConfig, *gateway.Registry, error) {
	logger.Info("Loading configuration", "path", path)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	tenants, err := cfg.ResolveTenants(ctx, config.NewCredentialResolver())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}

	registry, err := gateway.NewRegistry(tenants, cfg.DefaultPresignExpiry(), storage.NewObjectStoreFactory(logger), logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, registry, nil
}

func checkConfig(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	cfg, registry, err := loadRegistry(cCtx.Context, cCtx.String(flags.ConfigFlag.Name), logger)
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		return err
	}

	logger.Info("Configuration is valid",
		"listen", cfg.Listen,
		"tenants", registry.Names(),
		slog.Duration("presignExpiry", cfg.DefaultPresignExpiry()))
	return nil
}

func runServer(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	shutdownTracing, err := tracing.Init(cCtx.Context, flags.TracingOptions(cCtx), logger)
	if err != nil {
		logger.Error("Failed to initialize tracing", "err", err)
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("Failed to flush traces", "err", err)
		}
	}()

	cfg, registry, err := loadRegistry(cCtx.Context, cCtx.String(flags.ConfigFlag.Name), logger)
	if err != nil {
		logger.Error("Failed to load configuration", "err", err)
		return err
	}

	listenAddr := cfg.Listen
	if addr := cCtx.String(flags.ListenAddrFlag.Name); addr != "" {
		listenAddr = addr
	}
	serverCfg := flags.ConfigureServer(cCtx, logger, listenAddr)

	metricsSrv, err := metrics.New(common.PackageName, serverCfg.MetricsAddr)
	if err != nil {
		logger.Error("Failed to create metrics server", "err", err)
		return err
	}
	gatewayMetrics := metrics.NewGatewayMetrics(metricsSrv.Registry(), metricsSrv.Namespace())

	dispatcher := gateway.NewDispatcher(registry, gatewayMetrics, nil, logger)
	handler := httpserver.NewHandler(dispatcher, registry, logger)

	server, err := httpserver.New(serverCfg, handler, metricsSrv)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server", "tenants", registry.Names())
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}
