package delivery

import (
	"context"
	"log/slog"
)

// Audited logs every message through the audit channel and then hands it to the real
// provider. The provider's result is what callers see.
type Audited struct {
	audit   Channel
	primary Channel
}

func NewAudited(audit, primary Channel) *Audited {
	return &Audited{audit: audit, primary: primary}
}

func (a *Audited) Name() string {
	return a.primary.Name()
}

func (a *Audited) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if _, err := a.audit.Send(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to write email audit record",
			slog.String("provider", a.primary.Name()),
			slog.String("error", err.Error()),
		)
	}

	return a.primary.Send(ctx, msg)
}
