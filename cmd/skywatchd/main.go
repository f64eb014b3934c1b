// Skywatchd is the satellite tracking daemon.
//
// It loads configuration, accepts element sets over HTTP, recomputes the
// tracked satellite's look angles on a fixed interval, and streams results
// to WebSocket clients. Shutdown is handled gracefully on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/large-farva/skywatch/internal/app"
	"github.com/large-farva/skywatch/internal/config"
)

const defaultConfigPath = "/etc/skywatch/skywatch.toml"

func main() {
	var (
		configPath = pflag.StringP("config", "c", defaultConfigPath, "Path to config TOML")
		bind       = pflag.String("bind", "", "HTTP bind address (overrides server.bind)")
		demo       = pflag.Bool("demo", false, "Track embedded element sets without user input")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// A missing default config is fine; an explicit path must exist.
		if !errors.Is(err, fs.ErrNotExist) || pflag.CommandLine.Changed("config") {
			log.Fatalf("config load failed: %v", err)
		}
		cfg = config.Default()
	}

	if *bind != "" {
		cfg.Server.Bind = *bind
	}
	if *demo {
		cfg.Demo.Enabled = true
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := log.New(os.Stdout, "skywatchd ", log.LstdFlags|log.Lmicroseconds)

	a, err := app.New(app.Options{
		Logger: logger,
		Cfg:    cfg,
		Bind:   cfg.Server.Bind,
	})
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("skywatchd failed: %v", err)
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}
