package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	emailSimulationEnv = "EMAIL_SIMULATION"
	emailProviderEnv   = "EMAIL_PROVIDER"
	emailFromEnv       = "EMAIL_FROM"
	emailMaxRetriesEnv = "EMAIL_MAX_RETRIES"
	resendAPIKeyEnv    = "RESEND_API_KEY"
	sendgridAPIKeyEnv  = "SENDGRID_API_KEY"
	mailgunAPIKeyEnv   = "MAILGUN_API_KEY"
	mailgunDomainEnv   = "MAILGUN_DOMAIN"
	smtpHostEnv        = "SMTP_HOST"
	smtpPortEnv        = "SMTP_PORT"
	smtpUserEnv        = "SMTP_USER"
	smtpPasswordEnv    = "SMTP_PASSWORD"
	appURLEnv          = "APP_URL"

	defaultEmailProvider = ProviderResend
	defaultEmailFrom     = "noreply@example.com"
	defaultSMTPPort      = 587
	defaultMaxRetries    = 3
	defaultAppURL        = "http://localhost:3000"
)

const (
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
	ProviderMailgun  = "mailgun"
	ProviderSMTP     = "smtp"
)

type EmailConfig struct {
	// Simulation is on unless EMAIL_SIMULATION is exactly "false".
	Simulation bool
	Provider   string
	From       string
	MaxRetries int
	AppURL     string

	ResendAPIKey   string
	SendGridAPIKey string
	MailgunAPIKey  string
	MailgunDomain  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

func LoadEmailConfig(v *viper.Viper) (*EmailConfig, error) {
	cfg := &EmailConfig{
		Simulation: strings.TrimSpace(v.GetString(emailSimulationEnv)) != "false",
		Provider:   strings.ToLower(stringOr(v, emailProviderEnv, defaultEmailProvider)),
		From:       strings.TrimSpace(v.GetString(emailFromEnv)),
		MaxRetries: positiveIntOr(v, emailMaxRetriesEnv, defaultMaxRetries),
		AppURL:     stringOr(v, appURLEnv, defaultAppURL),

		ResendAPIKey:   v.GetString(resendAPIKeyEnv),
		SendGridAPIKey: v.GetString(sendgridAPIKeyEnv),
		MailgunAPIKey:  v.GetString(mailgunAPIKeyEnv),
		MailgunDomain:  v.GetString(mailgunDomainEnv),

		SMTPHost:     v.GetString(smtpHostEnv),
		SMTPPort:     positiveIntOr(v, smtpPortEnv, defaultSMTPPort),
		SMTPUser:     v.GetString(smtpUserEnv),
		SMTPPassword: v.GetString(smtpPasswordEnv),
	}
	if cfg.From == "" {
		cfg.From = cfg.defaultFrom()
	}
	return cfg, nil
}

// defaultFrom picks the sender each provider would accept without EMAIL_FROM.
func (c *EmailConfig) defaultFrom() string {
	switch {
	case c.Provider == ProviderMailgun && c.MailgunDomain != "":
		return "noreply@" + c.MailgunDomain
	case c.Provider == ProviderSMTP && c.SMTPUser != "":
		return c.SMTPUser
	}
	return defaultEmailFrom
}

// MissingCredentials lists the settings the selected provider needs but does not have.
// It is empty in simulation mode.
func (c *EmailConfig) MissingCredentials() []string {
	if c.Simulation {
		return nil
	}

	var missing []string
	switch c.Provider {
	case ProviderResend:
		if c.ResendAPIKey == "" {
			missing = append(missing, resendAPIKeyEnv)
		}
	case ProviderSendGrid:
		if c.SendGridAPIKey == "" {
			missing = append(missing, sendgridAPIKeyEnv)
		}
	case ProviderMailgun:
		if c.MailgunAPIKey == "" {
			missing = append(missing, mailgunAPIKeyEnv)
		}
		if c.MailgunDomain == "" {
			missing = append(missing, mailgunDomainEnv)
		}
	case ProviderSMTP:
		if c.SMTPHost == "" {
			missing = append(missing, smtpHostEnv)
		}
		if c.SMTPUser == "" {
			missing = append(missing, smtpUserEnv)
		}
		if c.SMTPPassword == "" {
			missing = append(missing, smtpPasswordEnv)
		}
	}
	return missing
}
