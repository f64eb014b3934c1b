package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()): %v", err)
	}
	if got := Default().Tracker.Interval(); got != 2*time.Second {
		t.Errorf("default interval = %v, want 2s", got)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skywatch.toml")
	body := `
[station]
name = "Svalbard"
latitude = 78.23
longitude = 15.39

[tracker]
interval_ms = 500

[tracing]
enabled = true
exporter = "otlp"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Station.Name != "Svalbard" || cfg.Station.Latitude != 78.23 {
		t.Errorf("station = %+v", cfg.Station)
	}
	if cfg.Station.HeightKm != Default().Station.HeightKm {
		t.Errorf("height_km = %v, want default", cfg.Station.HeightKm)
	}
	if cfg.Tracker.Interval() != 500*time.Millisecond {
		t.Errorf("interval = %v", cfg.Tracker.Interval())
	}
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("endpoint = %q", cfg.Tracing.Endpoint)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"latitude":     "[station]\nlatitude = 91\n",
		"interval":     "[tracker]\ninterval_ms = 10\n",
		"min elev":     "[predict]\nmin_elevation = 95\n",
		"exporter":     "[tracing]\nenabled = true\nexporter = \"jaeger\"\n",
		"level":        "[logging]\nlevel = \"loud\"\n",
		"gpsd host":    "[station]\nuse_gpsd = true\ngpsd_host = \"\"\n",
		"sample ratio": "[tracing]\nsample_ratio = 2.0\n",
		"bad toml":     "[station\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted %q", body)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if cfg.Server.Bind != Default().Server.Bind {
		t.Errorf("defaults not returned alongside the error")
	}
}
