package delivery

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

const SimulationProvider = "simulation"

// Simulated never talks to a provider. It writes the whole message to the log so that
// operators can see exactly what would have been sent.
type Simulated struct {
	logger *slog.Logger
	audit  bool
}

func NewSimulated(logger *slog.Logger) *Simulated {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulated{logger: logger}
}

// newAuditLog returns a Simulated that labels its records as evidence of a real send.
func newAuditLog(logger *slog.Logger) *Simulated {
	s := NewSimulated(logger)
	s.audit = true
	return s
}

func (s *Simulated) Name() string {
	return SimulationProvider
}

func (s *Simulated) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	messageID := "sim-" + uuid.NewString()

	logMsg := "simulated email delivery"
	if s.audit {
		logMsg = "email delivery audit record"
	}

	s.logger.InfoContext(ctx, logMsg,
		slog.String("message_id", messageID),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
		slog.String("html", msg.HTML),
	)

	return &Receipt{
		MessageID: messageID,
		Provider:  SimulationProvider,
	}, nil
}

// IsSimulated reports whether ch never performs a real delivery.
func IsSimulated(ch Channel) bool {
	return ch.Name() == SimulationProvider
}
