// Package config defines the application configuration and its koanf-based loader.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	App          AppConfig          `koanf:"app"`
	Log          LogConfig          `koanf:"log"`
	Metrics      MetricsConfig      `koanf:"metrics"`
	Tracing      TracingConfig      `koanf:"tracing"`
	Cache        CacheConfig        `koanf:"cache"`
	Database     DatabaseConfig     `koanf:"database"`
	Optimization OptimizationConfig `koanf:"optimization"`
	Report       ReportConfig       `koanf:"report"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // json, text
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
	Insecure    bool    `koanf:"insecure"`
}

// CacheConfig holds result-cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // memory, redis
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// Addr returns the host:port address of the cache backend.
func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds run-history persistence settings.
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrationsDir   string        `koanf:"migrations_dir"`
}

// DSN builds a pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// OptimizationConfig carries the default optimization settings applied when a
// run does not override them.
type OptimizationConfig struct {
	EnablePressureConstraints        bool          `koanf:"enable_pressure_constraints"`
	EnableCompressorStations         bool          `koanf:"enable_compressor_stations"`
	MaxSolutionTime                  time.Duration `koanf:"max_solution_time"`
	OptimalityTolerance              float64       `koanf:"optimality_tolerance"`
	FeasibilityTolerance             float64       `koanf:"feasibility_tolerance"`
	UseLinearPressureApproximation   bool          `koanf:"use_linear_pressure_approximation"`
	LinearApproximationSegments      int           `koanf:"linear_approximation_segments"`
	PreferredSolver                  string        `koanf:"preferred_solver"`
	MinimumFlowThreshold             float64       `koanf:"minimum_flow_threshold"`
	ValidateNetworkBeforeOptimization bool         `koanf:"validate_network_before_optimization"`
}

// ReportConfig controls report generation.
type ReportConfig struct {
	OutputDir     string `koanf:"output_dir"`
	ExcelEnabled  bool   `koanf:"excel_enabled"`
	PDFEnabled    bool   `koanf:"pdf_enabled"`
	Author        string `koanf:"author"`
	IncludeCharts bool   `koanf:"include_charts"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "gaspipe",
			Version:     "1.0.0",
			Environment: "development",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Port:      9090,
			Path:      "/metrics",
			Namespace: "gaspipe",
			Subsystem: "engine",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			ServiceName: "gaspipe",
			SampleRate:  1.0,
			Insecure:    true,
		},
		Cache: CacheConfig{
			Enabled:    false,
			Driver:     "memory",
			Host:       "localhost",
			Port:       6379,
			DefaultTTL: 10 * time.Minute,
			MaxEntries: 1024,
		},
		Database: DatabaseConfig{
			Enabled:         false,
			Host:            "localhost",
			Port:            5432,
			User:            "gaspipe",
			Name:            "gaspipe",
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			ConnMaxLifetime: time.Hour,
			MigrationsDir:   "migrations",
		},
		Optimization: OptimizationConfig{
			EnablePressureConstraints:         false,
			EnableCompressorStations:          false,
			MaxSolutionTime:                   300 * time.Second,
			OptimalityTolerance:               1e-6,
			FeasibilityTolerance:              1e-6,
			UseLinearPressureApproximation:    true,
			LinearApproximationSegments:       10,
			PreferredSolver:                   "simplex",
			MinimumFlowThreshold:              0.01,
			ValidateNetworkBeforeOptimization: true,
		},
		Report: ReportConfig{
			OutputDir:    "reports",
			ExcelEnabled: true,
			PDFEnabled:   true,
			Author:       "gaspipe",
		},
	}
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	var problems []string

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "":
	default:
		problems = append(problems, fmt.Sprintf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Cache.Driver {
	case "memory", "redis", "":
	default:
		problems = append(problems, fmt.Sprintf("cache.driver: unknown driver %q", c.Cache.Driver))
	}
	if c.Optimization.LinearApproximationSegments < 1 || c.Optimization.LinearApproximationSegments > 100 {
		problems = append(problems, fmt.Sprintf(
			"optimization.linear_approximation_segments: %d outside [1,100]",
			c.Optimization.LinearApproximationSegments))
	}
	if c.Optimization.MaxSolutionTime <= 0 {
		problems = append(problems, "optimization.max_solution_time: must be positive")
	}
	if c.Optimization.FeasibilityTolerance <= 0 {
		problems = append(problems, "optimization.feasibility_tolerance: must be positive")
	}
	if c.Optimization.MinimumFlowThreshold < 0 {
		problems = append(problems, "optimization.minimum_flow_threshold: must be non-negative")
	}
	if c.Database.Enabled && c.Database.Host == "" {
		problems = append(problems, "database.host: required when database is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
