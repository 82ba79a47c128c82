package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPattern is the source location template; {net_id} is substituted.
const DefaultPattern = "s3a://{net_id}-spark-logs/data/*/*"

// Report file names, joined to the output prefix.
const (
	TimelineFile       = "timeline.csv"
	ClusterSummaryFile = "cluster_summary.csv"
	StatsFile          = "stats.txt"
	BarChartFile       = "bar_chart.png"
	DensityPlotFile    = "density_plot.png"
)

// Config holds all apptimeline configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Engine    EngineConfig    `yaml:"engine"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SourceConfig describes where raw logs are read from.
type SourceConfig struct {
	Pattern   string `yaml:"pattern" env:"APPTIMELINE_PATTERN"`
	NetID     string `yaml:"net_id" env:"APPTIMELINE_NET_ID"`
	Endpoint  string `yaml:"endpoint" env:"APPTIMELINE_S3_ENDPOINT"`
	Region    string `yaml:"region" env:"APPTIMELINE_S3_REGION"`
	AccessKey string `yaml:"access_key" env:"APPTIMELINE_S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"APPTIMELINE_S3_SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"APPTIMELINE_S3_USE_SSL"`
}

// EngineConfig holds extraction settings.
type EngineConfig struct {
	Workers   int  `yaml:"workers" env:"APPTIMELINE_WORKERS"`
	StrictIDs bool `yaml:"strict_ids" env:"APPTIMELINE_STRICT_IDS"`
}

// OutputConfig holds report destination settings.
type OutputConfig struct {
	Dir        string   `yaml:"dir" env:"APPTIMELINE_OUTPUT_DIR"`
	Prefix     string   `yaml:"prefix" env:"APPTIMELINE_OUTPUT_PREFIX"`
	Sinks      []string `yaml:"sinks" env:"APPTIMELINE_OUTPUTS" envSeparator:","`
	SQLitePath string   `yaml:"sqlite_path" env:"APPTIMELINE_SQLITE_PATH"`
	Pretty     bool     `yaml:"pretty" env:"APPTIMELINE_OUTPUT_PRETTY"`

	WebhookURL     string            `yaml:"webhook_url" env:"APPTIMELINE_WEBHOOK_URL"`
	WebhookHeaders map[string]string `yaml:"webhook_headers" env:"APPTIMELINE_WEBHOOK_HEADERS"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"APPTIMELINE_LOG_LEVEL"`
	Format string `yaml:"format" env:"APPTIMELINE_LOG_FORMAT"` // "text" or "json"
}

// TelemetryConfig enables OTLP tracing when Endpoint is set.
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint" env:"APPTIMELINE_OTEL_ENDPOINT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Pattern: DefaultPattern,
			NetID:   "unknown",
			UseSSL:  true,
		},
		Engine: EngineConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Dir:    filepath.Join("data", "output"),
			Prefix: "problem2",
			Sinks:  []string{"files"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then APPTIMELINE_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration errors that would fail a run.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Source.Pattern) == "" {
		errs = append(errs, errors.New("source pattern is required"))
	}
	if c.Engine.Workers < 1 {
		errs = append(errs, fmt.Errorf("engine workers must be at least 1, got %d", c.Engine.Workers))
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		errs = append(errs, errors.New("output dir is required"))
	}
	for _, s := range c.Output.Sinks {
		switch s {
		case "files", "sqlite", "stdout":
		case "webhook":
			if strings.TrimSpace(c.Output.WebhookURL) == "" {
				errs = append(errs, errors.New("webhook sink requires output webhook_url"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown output sink %q", s))
		}
	}
	return errors.Join(errs...)
}

// SourcePattern returns the pattern with {net_id} substituted.
func (c Config) SourcePattern() string {
	return strings.ReplaceAll(c.Source.Pattern, "{net_id}", c.Source.NetID)
}

// Path returns the location of a report file inside the output directory.
func (o OutputConfig) Path(name string) string {
	if o.Prefix != "" {
		name = o.Prefix + "_" + name
	}
	return filepath.Join(o.Dir, name)
}

// SQLiteFile returns the database path, defaulting to a file in the output dir.
func (o OutputConfig) SQLiteFile() string {
	if o.SQLitePath != "" {
		return o.SQLitePath
	}
	return o.Path("timeline.db")
}

// HasSink reports whether the named sink is enabled.
func (o OutputConfig) HasSink(name string) bool {
	for _, s := range o.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// WorkersForMaster maps a master argument onto in-process worker counts:
// "local" is one worker, "local[N]" is N and "local[*]" is one per CPU.
// ok is false for anything else (remote masters), leaving fallback in place.
func WorkersForMaster(master string, fallback int) (workers int, ok bool) {
	switch {
	case master == "local":
		return 1, true
	case strings.HasPrefix(master, "local[") && strings.HasSuffix(master, "]"):
		inner := master[len("local[") : len(master)-1]
		if inner == "*" {
			return runtime.NumCPU(), true
		}
		// local[N,F] carries a failure count we do not use.
		inner, _, _ = strings.Cut(inner, ",")
		n, err := strconv.Atoi(inner)
		if err != nil || n < 1 {
			return fallback, false
		}
		return n, true
	}
	return fallback, false
}
