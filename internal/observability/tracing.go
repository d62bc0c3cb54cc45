package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/config"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

func tracingSkipReason(cfg config.Config) string {
	switch {
	case !cfg.UptraceEnabled:
		return "UPTRACE_ENABLED=false"
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return "UPTRACE_DSN empty"
	default:
		return ""
	}
}

// startTracing installs the global OpenTelemetry providers. Logs stay on zap;
// only spans and metrics are exported.
func startTracing(cfg config.Config, logger *logging.Logger) func(context.Context) error {
	if reason := tracingSkipReason(cfg); reason != "" {
		logger.Info("tracing off", "reason", reason)
		return nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(false),
	)
	logger.Info("tracing on", "exporter", "uptrace", "version", cfg.ServiceVersion)

	return uptrace.Shutdown
}
