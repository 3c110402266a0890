//go:build gcloud

package main

import (
	"context"
	"os"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/logging"
)

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	serviceName := os.Getenv("K_SERVICE")
	if serviceName == "" {
		serviceName = "deadline-alerts"
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = os.Getenv("GCLOUD_PROJECT_ID")
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: os.Getenv("K_REVISION"),
		},
		Environment:   logging.EnvProd,
		LogLevel:      cfg.LogLevel,
		GCPProjectID:  projectID,
		SamplingRate:  1.0,
		DefaultModule: logging.ModuleAlerts,
	})
}
