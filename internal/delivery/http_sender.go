package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodyBytes = 4 << 10

// httpSender runs provider requests with bounded, exponentially spaced retries.
type httpSender struct {
	provider     string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
}

func newHTTPSender(provider string, maxRetries int, o *options) *httpSender {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &httpSender{
		provider:     provider,
		httpClient:   o.httpClient,
		maxRetries:   maxRetries,
		retryBackoff: o.retryBackoff,
	}
}

type requestBuilder func(ctx context.Context) (*http.Request, error)

type responseDecoder func(resp *http.Response) (*Receipt, error)

func (s *httpSender) send(ctx context.Context, to string, build requestBuilder, decode responseDecoder) (*Receipt, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * s.retryBackoff
			slog.DebugContext(ctx, "retrying email delivery",
				slog.String("provider", s.provider),
				slog.String("to", to),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, transportError(s.provider, ctx.Err())
			case <-time.After(backoff):
			}
		}

		receipt, err := s.doRequest(ctx, to, build, decode)
		if err == nil {
			return receipt, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
	}

	slog.ErrorContext(ctx, "all retries exhausted for email delivery",
		slog.String("provider", s.provider),
		slog.String("to", to),
		slog.Int("max_retries", s.maxRetries),
		slog.String("error", lastErr.Error()),
	)
	return nil, fmt.Errorf("failed to deliver email after %d attempts: %w", s.maxRetries, lastErr)
}

func (s *httpSender) doRequest(ctx context.Context, to string, build requestBuilder, decode responseDecoder) (*Receipt, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", s.provider, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "failed to send request to email provider",
			slog.String("provider", s.provider),
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return nil, transportError(s.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		slog.WarnContext(ctx, "unexpected status code from email provider",
			slog.String("provider", s.provider),
			slog.String("to", to),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, providerError(s.provider, resp.StatusCode, providerMessage(body, resp.Status))
	}

	receipt, err := decode(resp)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "email delivered",
		slog.String("provider", s.provider),
		slog.String("message_id", receipt.MessageID),
		slog.String("to", to),
	)
	return receipt, nil
}

type providerErrorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// providerMessage extracts a human readable reason from a provider error body.
func providerMessage(body []byte, fallback string) string {
	var parsed providerErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			if e.Message != "" {
				msgs = append(msgs, e.Message)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fallback
}
