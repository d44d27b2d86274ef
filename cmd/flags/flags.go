package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/celia-media/api"
	"github.com/ruteri/celia-media/common"
	"github.com/ruteri/celia-media/config"
	"github.com/ruteri/celia-media/tracing"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             time.Duration(cCtx.Int64(WriteTimeoutSecondsFlag.Name)) * time.Second,
	}
}

func TracingOptions(cCtx *cli.Context) tracing.Options {
	return tracing.Options{
		Enabled:     cCtx.Bool(TracingEnabledFlag.Name),
		Endpoint:    cCtx.String(TracingEndpointFlag.Name),
		SampleRatio: cCtx.Float64(TracingSampleRatioFlag.Name),
		ServiceName: cCtx.String(LogServiceFlag.Name),
	}
}

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Value:   config.DefaultConfigPath,
	EnvVars: []string{config.ConfigPathEnv},
	Usage:   "path to the YAML gateway configuration",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Usage: "address to listen on for API, overrides 'listen' from the config file",
}

var WriteTimeoutSecondsFlag = &cli.Int64Flag{
	Name:  "write-timeout-seconds",
	Value: 0,
	Usage: "maximum seconds to write a response, 0 for no limit",
}

var ServerAddrFlag = &cli.StringFlag{
	Name:  "server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "gateway base URL",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var TracingEnabledFlag = &cli.BoolFlag{
	Name:    "tracing",
	Value:   false,
	EnvVars: []string{"CELIA_TRACING"},
	Usage:   "enable OpenTelemetry tracing",
}
var TracingEndpointFlag = &cli.StringFlag{
	Name:    "tracing-endpoint",
	EnvVars: []string{"OTEL_EXPORTER_OTLP_ENDPOINT"},
	Usage:   "OTLP/HTTP collector endpoint, host:port or URL",
}
var TracingSampleRatioFlag = &cli.Float64Flag{
	Name:  "tracing-sample-ratio",
	Value: 1.0,
	Usage: "fraction of traces to sample, 0.0 to 1.0",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var CommonFlags = append(append([]cli.Flag{}, LogFlags...),
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
	WriteTimeoutSecondsFlag,
	TracingEnabledFlag,
	TracingEndpointFlag,
	TracingSampleRatioFlag,
)
