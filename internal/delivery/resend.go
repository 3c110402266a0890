package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
)

const defaultResendBaseURL = "https://api.resend.com"

type Resend struct {
	sender  *httpSender
	baseURL string
	apiKey  string
	from    string
}

func NewResend(cfg *config.EmailConfig, opts ...Option) *Resend {
	o := applyOptions(defaultResendBaseURL, opts)
	return &Resend{
		sender:  newHTTPSender(config.ProviderResend, cfg.MaxRetries, o),
		baseURL: o.baseURL,
		apiKey:  cfg.ResendAPIKey,
		from:    cfg.From,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (r *Resend) Name() string {
	return config.ProviderResend
}

func (r *Resend) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if r.apiKey == "" {
		return nil, configurationError(config.ProviderResend, "RESEND_API_KEY is not set")
	}

	payload, err := json.Marshal(resendRequest{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resend request: %w", err)
	}

	url := r.baseURL + "/emails"

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
		return req, nil
	}

	decode := func(resp *http.Response) (*Receipt, error) {
		var body resendResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, providerError(config.ProviderResend, resp.StatusCode, "failed to decode response: "+err.Error())
		}
		return &Receipt{MessageID: body.ID, Provider: config.ProviderResend}, nil
	}

	return r.sender.send(ctx, msg.To, build, decode)
}
