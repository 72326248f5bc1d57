// Package engine is the optimization facade: it validates inputs,
// dispatches to an algorithm from the registry, cross-validates the
// solution against physical constraints, and offers comparison and
// scenario batches plus report generation.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gaspipe/internal/history"
	"gaspipe/internal/network"
	"gaspipe/internal/optimize"
	"gaspipe/internal/result"
	"gaspipe/pkg/apperror"
	"gaspipe/pkg/cache"
	"gaspipe/pkg/logger"
	"gaspipe/pkg/metrics"
	"gaspipe/pkg/telemetry"
)

// Engine dispatches optimization runs. All collaborators besides the
// registry are optional; a zero Options gives a bare engine.
type Engine struct {
	registry *optimize.Registry
	metrics  *metrics.Metrics
	cache    *cache.ResultCache
	history  history.Store
	tracing  *telemetry.Provider
}

// Options carries the optional engine collaborators.
type Options struct {
	Registry *optimize.Registry
	Metrics  *metrics.Metrics
	Cache    *cache.ResultCache
	History  history.Store
	Tracing  *telemetry.Provider
}

// New creates an engine. A nil registry defaults to the built-in
// algorithms.
func New(opts Options) *Engine {
	registry := opts.Registry
	if registry == nil {
		registry = optimize.NewDefaultRegistry()
	}
	return &Engine{
		registry: registry,
		metrics:  opts.Metrics,
		cache:    opts.Cache,
		history:  opts.History,
		tracing:  opts.Tracing,
	}
}

// Registry exposes the algorithm registry (for listing).
func (e *Engine) Registry() *optimize.Registry { return e.registry }

// Optimize runs one algorithm on one network. The returned result is never
// nil. A non-nil error means the run could not start (bad input, unknown
// algorithm, inapplicable algorithm); solver-level failures are expressed
// through the result status instead. A network that fails validation only
// for a supply shortfall comes back with an Infeasible status next to the
// error; every other rejection carries an Error status.
func (e *Engine) Optimize(ctx context.Context, net *network.Network, settings *optimize.Settings, algorithmName string) (*result.OptimizationResult, error) {
	if net == nil {
		return errResult(algorithmName, "network is nil"), apperror.New(apperror.CodeNilInput, "network is nil")
	}
	if settings == nil {
		settings = optimize.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return errResult(algorithmName, err.Error()), err
	}
	if settings.ValidateNetworkBeforeOptimization {
		if err := net.Validate(); err != nil {
			res := errResult(algorithmName, err.Error())
			// A well-formed network whose only fault is supply below demand
			// cannot be served: report it as Infeasible rather than Error.
			if verrs, ok := err.(*apperror.ValidationErrors); ok {
				shortfallOnly := true
				for _, e := range verrs.Errors {
					if e.Code != apperror.CodeSupplyShortfall {
						shortfallOnly = false
					}
				}
				if shortfallOnly {
					res.Status = result.StatusInfeasible
				}
			}
			return res, err
		}
	}

	algorithm, err := e.registry.Get(algorithmName)
	if err != nil {
		return errResult(algorithmName, err.Error()), err
	}
	if !algorithm.CanHandle(net, settings) {
		err := apperror.New(apperror.CodeAlgorithmMismatch,
			"algorithm %q cannot handle this network", algorithmName)
		return errResult(algorithmName, err.Error()), err
	}

	runID := uuid.NewString()
	log := logger.Run(runID, algorithmName).With("network", net.Name)

	ctx, endSpan := e.startSpan(ctx, algorithmName, net.Name)

	e.metrics.ObserveNetwork(len(net.Points), len(net.Segments))

	// Cache lookup, keyed by network content, algorithm and settings.
	cacheKey := e.cacheKey(net, settings, algorithmName)
	if e.cache != nil && cacheKey != "" {
		var cached result.OptimizationResult
		if hit, err := e.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			if e.metrics != nil {
				e.metrics.CacheHits.Inc()
			}
			log.Info("optimization served from cache")
			cached.RunID = runID
			endSpan(string(cached.Status), cached.ObjectiveValue, nil)
			return &cached, nil
		}
		if e.metrics != nil {
			e.metrics.CacheMisses.Inc()
		}
	}

	started := time.Now()
	res := e.runProtected(ctx, algorithm, net, settings)
	elapsed := time.Since(started)

	res.RunID = runID
	res.StartedAt = started.UTC()
	res.ElapsedMs = elapsed.Milliseconds()
	if res.Algorithm == "" {
		res.Algorithm = algorithmName
	}

	// Post-solution validation: the status stays as the solver reported
	// it, but the violation list marks the result untrusted.
	if res.Status.Succeeded() {
		if violations := ValidateSolution(net, settings, res); len(violations) > 0 {
			res.ValidationErrors = violations
			log.Warn("post-solution validation failed", "violations", len(violations))
		}
	}

	e.metrics.ObserveRun(algorithmName, string(res.Status), elapsed,
		res.ObjectiveValue, res.Metrics.TotalThroughput, len(res.ValidationErrors) > 0)

	if e.cache != nil && cacheKey != "" && res.Status.Succeeded() && len(res.ValidationErrors) == 0 {
		if err := e.cache.Set(ctx, cacheKey, res); err != nil {
			log.Warn("result cache store failed", "error", err)
		}
	}
	if e.history != nil {
		if err := e.history.SaveRun(ctx, net.Name, res); err != nil {
			log.Warn("run history store failed", "error", err)
		}
	}

	log.Info("optimization finished",
		"status", res.Status, "objective", res.ObjectiveValue, "elapsed_ms", res.ElapsedMs)
	endSpan(string(res.Status), res.ObjectiveValue, nil)
	return res, nil
}

// runProtected invokes the algorithm with panic conversion: no partial
// result may escape an internal failure without an Error status.
func (e *Engine) runProtected(ctx context.Context, algorithm optimize.Algorithm, net *network.Network, settings *optimize.Settings) (res *result.OptimizationResult) {
	defer func() {
		if r := recover(); r != nil {
			res = result.New(algorithm.Name())
			res.Status = result.StatusError
			res.AddMessage("internal error: %v", r)
			slog.Error("algorithm panic recovered", "algorithm", algorithm.Name(), "panic", fmt.Sprint(r))
		}
	}()
	return algorithm.Optimize(ctx, net, settings)
}

func (e *Engine) startSpan(ctx context.Context, algorithm, networkName string) (context.Context, func(string, float64, error)) {
	if e.tracing == nil {
		return ctx, func(string, float64, error) {}
	}
	ctx, span := e.tracing.StartRun(ctx, algorithm, networkName)
	return ctx, func(status string, objective float64, err error) {
		telemetry.EndRun(span, status, objective, err)
	}
}

func (e *Engine) cacheKey(net *network.Network, settings *optimize.Settings, algorithmName string) string {
	if e.cache == nil {
		return ""
	}
	netHash, err := cache.NetworkHash(net)
	if err != nil {
		return ""
	}
	return cache.BuildResultKey(netHash, algorithmName,
		settings.Fingerprint(), cache.ParamsFingerprint(settings.AlgorithmParameters))
}

func errResult(algorithm, message string) *result.OptimizationResult {
	res := result.New(algorithm)
	res.Status = result.StatusError
	res.AddMessage("%s", message)
	return res
}
