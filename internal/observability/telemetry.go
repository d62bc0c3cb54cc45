package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/competition-manager/internal/config"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
)

// Telemetry owns the process-wide exporters: Uptrace tracing, Pyroscope
// profiling and the pprof debug listener. Each one is optional.
type Telemetry struct {
	logger   *logging.Logger
	tracing  func(context.Context) error
	profiler *pyroscope.Profiler
	debug    *http.Server
}

// Start brings up every exporter the config enables. On failure the
// exporters already started are shut down before returning.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger.Named("telemetry")}

	t.tracing = startTracing(cfg, t.logger)

	profiler, err := startProfiler(cfg, t.logger)
	if err != nil {
		_ = t.Shutdown(context.Background())
		return nil, err
	}
	t.profiler = profiler

	t.debug = startDebugServer(cfg, t.logger)

	return t, nil
}

// Shutdown stops the exporters in reverse start order and reports every
// failure. Safe on a nil Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if t.debug != nil {
		if err := t.debug.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		t.debug = nil
	}
	if t.profiler != nil {
		if err := t.profiler.Stop(); err != nil {
			errs = append(errs, err)
		}
		t.profiler = nil
	}
	if t.tracing != nil {
		if err := t.tracing(ctx); err != nil {
			errs = append(errs, err)
		}
		t.tracing = nil
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	t.logger.Info("telemetry stopped")
	return nil
}
