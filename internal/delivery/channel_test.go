package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestSimulated_Send(t *testing.T) {
	logger, buf := newBufferLogger()
	sim := NewSimulated(logger)

	receipt, err := sim.Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.HasPrefix(receipt.MessageID, "sim-") {
		t.Errorf("MessageID = %q, want sim- prefix", receipt.MessageID)
	}
	if receipt.Provider != SimulationProvider {
		t.Errorf("Provider = %q", receipt.Provider)
	}

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not one JSON record: %v: %s", err, buf.String())
	}
	want := map[string]string{
		"msg":     "simulated email delivery",
		"to":      "ops@example.com",
		"subject": testMessage().Subject,
		"text":    testMessage().Text,
		"html":    testMessage().HTML,
	}
	for key, value := range want {
		if record[key] != value {
			t.Errorf("log %s = %v, want %q", key, record[key], value)
		}
	}
}

func TestNewChannel(t *testing.T) {
	logger, _ := newBufferLogger()

	tests := []struct {
		name          string
		cfg           *config.EmailConfig
		wantName      string
		wantSimulated bool
	}{
		{
			name:          "simulation mode",
			cfg:           &config.EmailConfig{Simulation: true, Provider: config.ProviderResend},
			wantName:      SimulationProvider,
			wantSimulated: true,
		},
		{
			name:          "unknown provider falls back to simulation",
			cfg:           &config.EmailConfig{Provider: "pigeon"},
			wantName:      SimulationProvider,
			wantSimulated: true,
		},
		{
			name:     "resend",
			cfg:      &config.EmailConfig{Provider: config.ProviderResend},
			wantName: config.ProviderResend,
		},
		{
			name:     "sendgrid",
			cfg:      &config.EmailConfig{Provider: config.ProviderSendGrid},
			wantName: config.ProviderSendGrid,
		},
		{
			name:     "mailgun",
			cfg:      &config.EmailConfig{Provider: config.ProviderMailgun},
			wantName: config.ProviderMailgun,
		},
		{
			name:     "smtp",
			cfg:      &config.EmailConfig{Provider: config.ProviderSMTP},
			wantName: config.ProviderSMTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewChannel(tt.cfg, logger)
			if ch.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", ch.Name(), tt.wantName)
			}
			if IsSimulated(ch) != tt.wantSimulated {
				t.Errorf("IsSimulated() = %v, want %v", IsSimulated(ch), tt.wantSimulated)
			}
			if !tt.wantSimulated {
				if _, ok := ch.(*Audited); !ok {
					t.Errorf("channel = %T, want *Audited", ch)
				}
			}
		})
	}
}

func TestProviders(t *testing.T) {
	got := Providers()
	want := []string{"mailgun", "resend", "sendgrid", "smtp"}
	if len(got) != len(want) {
		t.Fatalf("Providers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Providers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAudited_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	audit := NewMockChannel(ctrl)
	primary := NewMockChannel(ctrl)
	msg := testMessage()

	gomock.InOrder(
		audit.EXPECT().Send(gomock.Any(), msg).Return(&Receipt{MessageID: "sim-1", Provider: SimulationProvider}, nil),
		primary.EXPECT().Send(gomock.Any(), msg).Return(&Receipt{MessageID: "re_1", Provider: "resend"}, nil),
	)

	receipt, err := NewAudited(audit, primary).Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if receipt.MessageID != "re_1" {
		t.Errorf("MessageID = %q, want primary receipt", receipt.MessageID)
	}
}

func TestAudited_Send_ReturnsPrimaryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	audit := NewMockChannel(ctrl)
	primary := NewMockChannel(ctrl)

	providerErr := providerError("resend", http.StatusBadRequest, "bad address")
	audit.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil, errors.New("log sink down"))
	primary.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil, providerErr)
	primary.EXPECT().Name().Return("resend").AnyTimes()

	_, err := NewAudited(audit, primary).Send(context.Background(), testMessage())
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("Send() error = %v, want ErrProvider", err)
	}
}

func TestWithTimeout_SlowChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slow := NewMockChannel(ctrl)
	slow.EXPECT().Name().Return("slow").AnyTimes()
	slow.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msg *Message) (*Receipt, error) {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return &Receipt{MessageID: "late"}, nil
		},
	)

	start := time.Now()
	_, err := WithTimeout(slow, 20*time.Millisecond).Send(context.Background(), testMessage())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Send() error = %v, want ErrTransport", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Send() took %v, want it bounded by the timeout", elapsed)
	}
	if !strings.Contains(err.Error(), "did not finish within 20ms") {
		t.Errorf("error %q does not mention the timeout", err)
	}
}

// blockingChannel waits for its context and reports the context error.
type blockingChannel struct{}

func (blockingChannel) Name() string {
	return "blocking"
}

func (blockingChannel) Send(ctx context.Context, _ *Message) (*Receipt, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout_CallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := WithTimeout(blockingChannel{}, 5*time.Second).Send(ctx, testMessage())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Send() error = %v, want ErrTransport", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want it to wrap context.Canceled", err)
	}
	if strings.Contains(err.Error(), "within") {
		t.Errorf("error %q blames the timeout for a cancelled caller", err)
	}
}

func TestWithTimeout_PassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ch := NewMockChannel(ctrl)
	ch.EXPECT().Send(gomock.Any(), gomock.Any()).Return(&Receipt{MessageID: "ok"}, nil)

	receipt, err := WithTimeout(ch, time.Second).Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if receipt.MessageID != "ok" {
		t.Errorf("MessageID = %q", receipt.MessageID)
	}

	if got := WithTimeout(ch, 0); got != Channel(ch) {
		t.Error("WithTimeout(ch, 0) should return ch unchanged")
	}
}

func TestError_IsAndRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		sentinel  error
		retryable bool
	}{
		{name: "configuration", err: configurationError("resend", "missing key"), sentinel: ErrConfiguration},
		{name: "transport", err: transportError("resend", errors.New("reset")), sentinel: ErrTransport, retryable: true},
		{name: "rate limited", err: providerError("resend", 429, "slow down"), sentinel: ErrProvider, retryable: true},
		{name: "server error", err: providerError("resend", 503, "unavailable"), sentinel: ErrProvider, retryable: true},
		{name: "bad request", err: providerError("resend", 400, "invalid"), sentinel: ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			for _, other := range []error{ErrConfiguration, ErrTransport, ErrProvider} {
				if other != tt.sentinel && errors.Is(tt.err, other) {
					t.Errorf("errors.Is(%v, %v) = true", tt.err, other)
				}
			}
			if tt.err.Retryable() != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", tt.err.Retryable(), tt.retryable)
			}
		})
	}
}
