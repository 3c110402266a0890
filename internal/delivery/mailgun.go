package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
)

const defaultMailgunBaseURL = "https://api.mailgun.net"

type Mailgun struct {
	sender  *httpSender
	baseURL string
	apiKey  string
	domain  string
	from    string
}

func NewMailgun(cfg *config.EmailConfig, opts ...Option) *Mailgun {
	o := applyOptions(defaultMailgunBaseURL, opts)
	return &Mailgun{
		sender:  newHTTPSender(config.ProviderMailgun, cfg.MaxRetries, o),
		baseURL: o.baseURL,
		apiKey:  cfg.MailgunAPIKey,
		domain:  cfg.MailgunDomain,
		from:    cfg.From,
	}
}

type mailgunResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (m *Mailgun) Name() string {
	return config.ProviderMailgun
}

func (m *Mailgun) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if m.apiKey == "" || m.domain == "" {
		return nil, configurationError(config.ProviderMailgun, "MAILGUN_API_KEY and MAILGUN_DOMAIN must be set")
	}

	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Text)
	form.Set("html", msg.HTML)
	encoded := form.Encode()

	endpoint := m.baseURL + "/v3/" + url.PathEscape(m.domain) + "/messages"

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth("api", m.apiKey)
		return req, nil
	}

	decode := func(resp *http.Response) (*Receipt, error) {
		var body mailgunResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, providerError(config.ProviderMailgun, resp.StatusCode, "failed to decode response: "+err.Error())
		}
		return &Receipt{MessageID: body.ID, Provider: config.ProviderMailgun}, nil
	}

	return m.sender.send(ctx, msg.To, build, decode)
}
