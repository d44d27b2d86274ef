package common

var (
	// Version is set at build time with -ldflags "-X github.com/ruteri/celia-media/common.Version=..."
	Version = "dev"

	// PackageName is used as the service name in logs, metrics and traces.
	PackageName = "celia-media"
)
