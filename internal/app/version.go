package app

import "runtime"

// Build-time variables set via -ldflags. For example:
//
//	go build -ldflags "-X github.com/large-farva/skywatch/internal/app.Version=v0.3.0"
var (
	Version   = "dev"
	GoVersion = runtime.Version()
	BuiltAt   = "unknown"
)
