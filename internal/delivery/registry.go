package delivery

import (
	"log/slog"
	"sort"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
)

type Factory func(cfg *config.EmailConfig, opts ...Option) Channel

var providers = map[string]Factory{
	config.ProviderResend: func(cfg *config.EmailConfig, opts ...Option) Channel {
		return NewResend(cfg, opts...)
	},
	config.ProviderSendGrid: func(cfg *config.EmailConfig, opts ...Option) Channel {
		return NewSendGrid(cfg, opts...)
	},
	config.ProviderMailgun: func(cfg *config.EmailConfig, opts ...Option) Channel {
		return NewMailgun(cfg, opts...)
	},
	config.ProviderSMTP: func(cfg *config.EmailConfig, opts ...Option) Channel {
		return NewSMTP(cfg, opts...)
	},
}

func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewChannel selects the delivery channel for cfg. Simulation mode and unknown
// providers both yield the simulated channel; a real provider is wrapped so every
// message is also written to the log.
func NewChannel(cfg *config.EmailConfig, logger *slog.Logger, opts ...Option) Channel {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Simulation {
		logger.Info("email delivery running in simulation mode")
		return NewSimulated(logger)
	}

	factory, ok := providers[cfg.Provider]
	if !ok {
		logger.Warn("unknown email provider, falling back to simulation",
			slog.String("provider", cfg.Provider),
			slog.Any("supported", Providers()),
		)
		return NewSimulated(logger)
	}

	logger.Info("email delivery configured",
		slog.String("provider", cfg.Provider),
		slog.String("from", cfg.From),
	)
	return NewAudited(newAuditLog(logger), factory(cfg, opts...))
}
