// Package config handles loading, defaulting, and validation of the
// skywatch TOML configuration file. Every section maps to a typed struct so
// the rest of the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Server  ServerConfig  `toml:"server"  json:"server"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Station StationConfig `toml:"station" json:"station"`
	Tracker TrackerConfig `toml:"tracker" json:"tracker"`
	Predict PredictConfig `toml:"predict" json:"predict"`
	Demo    DemoConfig    `toml:"demo"    json:"demo"`
	Metrics MetricsConfig `toml:"metrics" json:"metrics"`
	Tracing TracingConfig `toml:"tracing" json:"tracing"`
}

type ServerConfig struct {
	Bind string `toml:"bind" json:"bind"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
}

// StationConfig is the default observer. Height is kilometres above the
// ellipsoid.
type StationConfig struct {
	Name               string  `toml:"name"                 json:"name"`
	Latitude           float64 `toml:"latitude"             json:"latitude"`
	Longitude          float64 `toml:"longitude"            json:"longitude"`
	HeightKm           float64 `toml:"height_km"            json:"height_km"`
	UseGPSD            bool    `toml:"use_gpsd"             json:"use_gpsd"`
	GPSDHost           string  `toml:"gpsd_host"            json:"gpsd_host"`
	GPSDTimeoutSeconds int     `toml:"gpsd_timeout_seconds" json:"gpsd_timeout_seconds"`
}

type TrackerConfig struct {
	IntervalMS int `toml:"interval_ms" json:"interval_ms"`
}

// Interval is the live recompute cadence.
func (t TrackerConfig) Interval() time.Duration {
	return time.Duration(t.IntervalMS) * time.Millisecond
}

type PredictConfig struct {
	LookaheadHours int     `toml:"lookahead_hours" json:"lookahead_hours"`
	MinElevation   float64 `toml:"min_elevation"   json:"min_elevation"`
	StepSeconds    int     `toml:"step_seconds"    json:"step_seconds"`
}

type DemoConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path"    json:"path"`
}

type TracingConfig struct {
	Enabled     bool    `toml:"enabled"      json:"enabled"`
	Exporter    string  `toml:"exporter"     json:"exporter"`
	Endpoint    string  `toml:"endpoint"     json:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio" json:"sample_ratio"`
	ServiceName string  `toml:"service_name" json:"service_name"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "0.0.0.0:8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Station: StationConfig{
			Name:               "Mount Abu",
			Latitude:           24.625,
			Longitude:          72.715,
			HeightKm:           1.68,
			UseGPSD:            false,
			GPSDHost:           "localhost:2947",
			GPSDTimeoutSeconds: 10,
		},
		Tracker: TrackerConfig{
			IntervalMS: 2000,
		},
		Predict: PredictConfig{
			LookaheadHours: 24,
			MinElevation:   10,
			StepSeconds:    10,
		},
		Demo: DemoConfig{
			Enabled: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			Endpoint:    "localhost:4317",
			SampleRatio: 1.0,
			ServiceName: "skywatchd",
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks every constraint Load enforces. The daemon also calls it
// after applying command-line overrides.
func Validate(cfg Config) error {
	if cfg.Server.Bind == "" {
		return errors.New("server.bind must not be empty")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	if cfg.Station.Latitude < -90 || cfg.Station.Latitude > 90 {
		return errors.New("station.latitude must be between -90 and 90")
	}
	if cfg.Station.Longitude < -180 || cfg.Station.Longitude > 180 {
		return errors.New("station.longitude must be between -180 and 180")
	}
	if cfg.Station.UseGPSD && cfg.Station.GPSDHost == "" {
		return errors.New("station.gpsd_host must be set when use_gpsd is true")
	}
	if cfg.Station.GPSDTimeoutSeconds < 1 {
		return errors.New("station.gpsd_timeout_seconds must be >= 1")
	}
	if cfg.Tracker.IntervalMS < 100 {
		return errors.New("tracker.interval_ms must be >= 100")
	}
	if cfg.Predict.LookaheadHours < 1 {
		return errors.New("predict.lookahead_hours must be >= 1")
	}
	if cfg.Predict.MinElevation < 0 || cfg.Predict.MinElevation > 90 {
		return errors.New("predict.min_elevation must be between 0 and 90")
	}
	if cfg.Predict.StepSeconds < 1 {
		return errors.New("predict.step_seconds must be >= 1")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		return errors.New("metrics.path must not be empty")
	}
	if cfg.Tracing.Enabled {
		if cfg.Tracing.Exporter != "stdout" && cfg.Tracing.Exporter != "otlp" {
			return errors.New("tracing.exporter must be stdout or otlp")
		}
		if cfg.Tracing.Exporter == "otlp" && cfg.Tracing.Endpoint == "" {
			return errors.New("tracing.endpoint must be set for the otlp exporter")
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return errors.New("tracing.sample_ratio must be between 0 and 1")
	}
	return nil
}
