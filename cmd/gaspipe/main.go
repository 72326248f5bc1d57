// Package main is the gaspipe command-line interface.
//
// gaspipe optimizes gas flow over a pipeline network described by a JSON
// configuration file. Subcommands:
//
//	gaspipe optimize  -config net.json -algorithm minimize-cost
//	gaspipe compare   -config net.json [-algorithms a,b,c]
//	gaspipe scenarios -config net.json -algorithm maximize-throughput
//	gaspipe trace     -config net.json
//	gaspipe validate  -config net.json
//
// Application configuration (logging, cache, database, metrics, tracing,
// optimization defaults) is resolved from config.yaml and GASPIPE_*
// environment variables; run-level flags override the optimization
// defaults. Exit code 0 on success, 1 on validation or solver error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gaspipe/internal/engine"
	"gaspipe/internal/history"
	"gaspipe/internal/network"
	"gaspipe/internal/optimize"
	"gaspipe/internal/result"
	"gaspipe/internal/tracer"
	"gaspipe/pkg/cache"
	"gaspipe/pkg/config"
	"gaspipe/pkg/database"
	"gaspipe/pkg/logger"
	"gaspipe/pkg/metrics"
	"gaspipe/pkg/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	logger.InitWithConfig(logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
		Rotation: logger.Rotation{
			MaxSizeMB:  cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		},
	})

	switch args[0] {
	case "optimize":
		return cmdOptimize(cfg, args[1:])
	case "compare":
		return cmdCompare(cfg, args[1:])
	case "scenarios":
		return cmdScenarios(cfg, args[1:])
	case "trace":
		return cmdTrace(args[1:])
	case "validate":
		return cmdValidate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", args[0])
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gaspipe <optimize|compare|scenarios|trace|validate> [flags]")
}

// commonFlags registers the flags shared by the optimizing subcommands.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) (configPath *string, settings func() *optimize.Settings) {
	configPath = fs.String("config", "", "network configuration JSON file")
	pressureOn := fs.Bool("pressure", cfg.Optimization.EnablePressureConstraints, "enable pressure constraints")
	compressorsOn := fs.Bool("compressors", cfg.Optimization.EnableCompressorStations, "enable compressor stations")
	strategy := fs.String("strategy", "", "formulation: solver or graph (default: auto)")
	timeLimit := fs.Duration("time-limit", cfg.Optimization.MaxSolutionTime, "solver wall-clock cap")

	settings = func() *optimize.Settings {
		s := optimize.FromConfig(cfg.Optimization)
		s.EnablePressureConstraints = *pressureOn
		s.EnableCompressorStations = *compressorsOn
		s.MaxSolutionTime = *timeLimit
		if *strategy != "" {
			s.SetParam(optimize.ParamStrategy, *strategy)
		}
		return s
	}
	return configPath, settings
}

func loadNetwork(path string) (*network.Network, error) {
	if path == "" {
		return nil, fmt.Errorf("-config is required")
	}
	return network.LoadFile(path)
}

// buildEngine wires the optional collaborators configured in cfg.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, func()) {
	opts := engine.Options{}
	var cleanups []func()

	if cfg.Metrics.Enabled {
		opts.Metrics = metrics.Init(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		opts.Metrics.ServiceInfo.WithLabelValues(cfg.App.Version, cfg.App.Environment).Set(1)
		go func() {
			if err := metrics.Serve(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				slog.Warn("metrics endpoint stopped", "error", err)
			}
		}()
	}

	if provider, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
		Insecure:    cfg.Tracing.Insecure,
	}); err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		opts.Tracing = provider
		cleanups = append(cleanups, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = provider.Shutdown(shutdownCtx) //nolint:errcheck // best effort flush
		})
	}

	if cfg.Cache.Enabled {
		var backend cache.Cache
		switch cfg.Cache.Driver {
		case cache.BackendRedis:
			rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
				Addr:     cfg.Cache.Addr(),
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.DB,
			})
			if err != nil {
				slog.Warn("redis cache unavailable, falling back to memory", "error", err)
				backend = cache.NewMemoryCache(cfg.Cache.MaxEntries)
			} else {
				backend = rc
			}
		default:
			backend = cache.NewMemoryCache(cfg.Cache.MaxEntries)
		}
		rc := cache.NewResultCache(backend, cfg.Cache.DefaultTTL)
		opts.Cache = rc
		cleanups = append(cleanups, func() { _ = rc.Close() }) //nolint:errcheck
	}

	if cfg.Database.Enabled {
		if err := database.Migrate(cfg.Database); err != nil {
			slog.Warn("run history disabled: migrations failed", "error", err)
		} else if pool, err := database.NewPool(ctx, cfg.Database); err != nil {
			slog.Warn("run history disabled: connection failed", "error", err)
		} else {
			opts.History = history.NewPostgresStore(pool)
			cleanups = append(cleanups, pool.Close)
		}
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return engine.New(opts), cleanup
}

func cmdOptimize(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	configPath, settings := commonFlags(fs, cfg)
	algorithm := fs.String("algorithm", optimize.NameMaximizeThroughput, "algorithm name")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	net, err := loadNetwork(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	eng, cleanup := buildEngine(ctx, cfg)
	defer cleanup()

	res, err := eng.Optimize(ctx, net, settings(), *algorithm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	data, err := res.MarshalIndent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(string(data))

	if !res.Status.Succeeded() || len(res.ValidationErrors) > 0 {
		return 1
	}
	return 0
}

func cmdCompare(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	configPath, settings := commonFlags(fs, cfg)
	algorithms := fs.String("algorithms", "", "comma-separated algorithm names (default: all)")
	_ = fs.Parse(args) //nolint:errcheck

	net, err := loadNetwork(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var names []string
	if *algorithms != "" {
		names = strings.Split(*algorithms, ",")
	}

	ctx := context.Background()
	eng, cleanup := buildEngine(ctx, cfg)
	defer cleanup()

	cmp := eng.CompareAlgorithms(ctx, net, settings(), names)
	fmt.Print(engine.ComparisonReport(cmp))

	if err := writeReports(cfg, cmp); err != nil {
		slog.Warn("report files not written", "error", err)
	}

	for _, res := range cmp.Results {
		if res.Status == result.StatusError {
			return 1
		}
	}
	return 0
}

// writeReports drops XLSX/PDF comparison reports into the report directory
// when enabled.
func writeReports(cfg *config.Config, cmp *engine.Comparison) error {
	if !cfg.Report.ExcelEnabled && !cfg.Report.PDFEnabled {
		return nil
	}
	if err := os.MkdirAll(cfg.Report.OutputDir, 0755); err != nil {
		return err
	}
	stamp := time.Now().Format("20060102-150405")
	if cfg.Report.ExcelEnabled {
		data, err := engine.ExcelReport(cmp)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Report.OutputDir, fmt.Sprintf("comparison-%s.xlsx", stamp))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		slog.Info("report written", "path", path)
	}
	if cfg.Report.PDFEnabled {
		data, err := engine.PDFReport(cmp, cfg.Report.Author)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Report.OutputDir, fmt.Sprintf("comparison-%s.pdf", stamp))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		slog.Info("report written", "path", path)
	}
	return nil
}

func cmdScenarios(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("scenarios", flag.ExitOnError)
	configPath, settings := commonFlags(fs, cfg)
	algorithm := fs.String("algorithm", optimize.NameMinimizeCost, "algorithm name")
	_ = fs.Parse(args) //nolint:errcheck

	net, err := loadNetwork(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	eng, cleanup := buildEngine(ctx, cfg)
	defer cleanup()

	outcomes := eng.RunScenarios(ctx, net, settings(), *algorithm, network.StandardSensitivity(net))
	fmt.Print(engine.ScenarioReport(outcomes))

	for _, o := range outcomes {
		if o.Result.Status == result.StatusError {
			return 1
		}
	}
	return 0
}

func cmdTrace(args []string) int {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	configPath := fs.String("config", "", "network configuration JSON file")
	_ = fs.Parse(args) //nolint:errcheck

	net, err := loadNetwork(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	report := tracer.Trace(net)
	fmt.Printf("Network feasible: %t\n\n", report.IsNetworkFeasible)
	fmt.Printf("%-12s %14s\n", "Segment", "Required Flow")
	for _, id := range net.SegmentIDs() {
		if required, ok := report.RequiredFlows[id]; ok {
			fmt.Printf("%-12s %14.2f\n", id, required)
		}
	}
	for _, v := range report.Violations {
		fmt.Printf("violation: %s\n", v)
	}
	for id, unmet := range report.UntracedDemand {
		fmt.Printf("untraced: delivery %s has %.2f MMscfd with no upstream path\n", id, unmet)
	}

	if !report.IsNetworkFeasible {
		return 1
	}
	return 0
}

func cmdValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "", "network configuration JSON file")
	_ = fs.Parse(args) //nolint:errcheck

	net, err := loadNetwork(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if err := net.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid network:\n  %s\n", strings.ReplaceAll(err.Error(), "; ", "\n  "))
		return 1
	}

	if unreachable := net.ReachabilityReport(); len(unreachable) > 0 {
		fmt.Printf("warning: deliveries unreachable from any receipt: %s\n", strings.Join(unreachable, ", "))
	}
	fmt.Printf("network %q is valid: %d points, %d segments, supply %.1f, demand %.1f\n",
		net.Name, len(net.Points), len(net.Segments),
		net.TotalSupplyCapacity(), net.TotalDemandRequirement())
	return 0
}
