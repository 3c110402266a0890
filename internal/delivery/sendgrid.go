package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
)

const defaultSendGridBaseURL = "https://api.sendgrid.com"

type SendGrid struct {
	sender  *httpSender
	baseURL string
	apiKey  string
	from    string
}

func NewSendGrid(cfg *config.EmailConfig, opts ...Option) *SendGrid {
	o := applyOptions(defaultSendGridBaseURL, opts)
	return &SendGrid{
		sender:  newHTTPSender(config.ProviderSendGrid, cfg.MaxRetries, o),
		baseURL: o.baseURL,
		apiKey:  cfg.SendGridAPIKey,
		from:    cfg.From,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func (s *SendGrid) Name() string {
	return config.ProviderSendGrid
}

func (s *SendGrid) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if s.apiKey == "" {
		return nil, configurationError(config.ProviderSendGrid, "SENDGRID_API_KEY is not set")
	}

	// text/plain has to come before text/html.
	payload, err := json.Marshal(sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: msg.To}}}},
		From:             sendGridAddress{Email: s.from},
		Subject:          msg.Subject,
		Content: []sendGridContent{
			{Type: "text/plain", Value: msg.Text},
			{Type: "text/html", Value: msg.HTML},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sendgrid request: %w", err)
	}

	url := s.baseURL + "/v3/mail/send"

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		return req, nil
	}

	decode := func(resp *http.Response) (*Receipt, error) {
		messageID := resp.Header.Get("X-Message-Id")
		if messageID == "" {
			messageID = "sendgrid-" + resp.Status
		}
		return &Receipt{MessageID: messageID, Provider: config.ProviderSendGrid}, nil
	}

	return s.sender.send(ctx, msg.To, build, decode)
}
