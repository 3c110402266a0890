//go:build !gcloud

package main

import (
	"context"
	"os"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/logging"
)

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "deadline-alerts"
	}

	env := logging.EnvDev
	if cfg.IsProduction() {
		env = logging.EnvProd
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    serviceName,
			Version: Version,
		},
		Environment:   env,
		LogLevel:      cfg.LogLevel,
		SamplingRate:  1.0,
		DefaultModule: logging.ModuleAlerts,
	})
}
