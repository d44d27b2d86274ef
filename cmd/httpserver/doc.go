// Package main (cmd/httpserver) runs the gateway.
//
// The configuration file is read from --config, CELIA_CONFIG_PATH or
// /etc/celia-media/config.yml. Every tenant's credentials are resolved before
// the listener starts; an unreadable credential file, an unset environment
// variable or a failed Vault read stops the process with a non-zero exit.
//
// Usage:
//
//	celia-media --config ./config.yml --metrics-addr 127.0.0.1:8090
//	celia-media check-config --config ./config.yml
//
// Tracing is off by default. Enable it with --tracing and point
// --tracing-endpoint (or OTEL_EXPORTER_OTLP_ENDPOINT) at an OTLP/HTTP
// collector.
package main
