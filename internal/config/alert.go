package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
)

const (
	alertDaysThresholdEnv       = "ALERT_DAYS_THRESHOLD"
	alertCheckIntervalEnv       = "ALERT_CHECK_INTERVAL_MINUTES"
	alertStatusesEnv            = "ALERT_STATUSES"
	alertEmailEnv               = "ALERT_EMAIL"
	alertRouteToClientEnv       = "ALERT_ROUTE_TO_CLIENT"
	alertDedupWindowHoursEnv    = "ALERT_DEDUP_WINDOW_HOURS"
	alertDispatchTimeoutSecsEnv = "ALERT_DISPATCH_TIMEOUT_SECONDS"
	alertSchedulerEnabledEnv    = "ALERT_SCHEDULER_ENABLED"

	defaultDaysThreshold            = 3
	defaultCheckIntervalProduction  = 60
	defaultCheckIntervalDevelopment = 30
	defaultDedupWindowHours         = 24
	defaultDispatchTimeoutSeconds   = 10

	DefaultAlertRecipient = "admin@example.com"
)

type AlertConfig struct {
	DaysThreshold    int
	CheckInterval    time.Duration
	Statuses         []domain.ProjectStatus
	Recipient        string
	RouteToClient    bool
	DedupWindow      time.Duration
	DispatchTimeout  time.Duration
	SchedulerEnabled bool
}

func LoadAlertConfig(v *viper.Viper, environment string) (*AlertConfig, error) {
	intervalDefault := defaultCheckIntervalDevelopment
	if environment == EnvironmentProduction {
		intervalDefault = defaultCheckIntervalProduction
	}

	statuses, err := parseStatuses(v.GetString(alertStatusesEnv))
	if err != nil {
		return nil, err
	}

	return &AlertConfig{
		DaysThreshold:    positiveIntOr(v, alertDaysThresholdEnv, defaultDaysThreshold),
		CheckInterval:    time.Duration(positiveIntOr(v, alertCheckIntervalEnv, intervalDefault)) * time.Minute,
		Statuses:         statuses,
		Recipient:        stringOr(v, alertEmailEnv, DefaultAlertRecipient),
		RouteToClient:    boolOr(v, alertRouteToClientEnv, false),
		DedupWindow:      time.Duration(positiveIntOr(v, alertDedupWindowHoursEnv, defaultDedupWindowHours)) * time.Hour,
		DispatchTimeout:  time.Duration(positiveIntOr(v, alertDispatchTimeoutSecsEnv, defaultDispatchTimeoutSeconds)) * time.Second,
		SchedulerEnabled: boolOr(v, alertSchedulerEnabledEnv, true),
	}, nil
}

func parseStatuses(raw string) ([]domain.ProjectStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return append([]domain.ProjectStatus(nil), domain.DefaultAlertStatuses...), nil
	}

	var statuses []domain.ProjectStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		status := domain.ProjectStatus(strings.ToLower(part))
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAlertStatus, part)
		}
		statuses = append(statuses, status)
	}

	if len(statuses) == 0 {
		return append([]domain.ProjectStatus(nil), domain.DefaultAlertStatuses...), nil
	}
	return statuses, nil
}
