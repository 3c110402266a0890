package logging

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type Environment string

const (
	EnvDev  Environment = "development"
	EnvProd Environment = "production"
)

// Module tags log records with the component that produced them.
type Module string

const (
	ModuleAlerts    Module = "alerts"
	ModuleScheduler Module = "scheduler"
	ModuleDelivery  Module = "delivery"
	ModuleHTTP      Module = "http"
)

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type Config struct {
	Service       ServiceInfo
	Environment   Environment
	Level         slog.Level
	GCPProjectID  string
	DefaultModule Module
}

type moduleKey struct{}

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey{}, module)
}

func ModuleFromContext(ctx context.Context) (Module, bool) {
	m, ok := ctx.Value(moduleKey{}).(Module)
	return m, ok
}

// NewHandler builds the process-wide slog handler. Production output is JSON,
// development output is human readable text.
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		ReplaceAttr: replaceAttr,
	}

	var base slog.Handler
	if cfg.Environment == EnvProd {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}

	attrs := []slog.Attr{
		slog.String("service", cfg.Service.Name),
		slog.String("environment", string(cfg.Environment)),
	}
	if cfg.Service.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Service.Version))
	}
	if cfg.Service.Revision != "" {
		attrs = append(attrs, slog.String("revision", cfg.Service.Revision))
	}

	return &contextHandler{
		next:          base.WithAttrs(attrs),
		projectID:     cfg.GCPProjectID,
		defaultModule: cfg.DefaultModule,
	}
}

func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	return slog.New(NewHandler(w, cfg))
}

// contextHandler copies request scoped values (module, trace ids) onto each record.
type contextHandler struct {
	next          slog.Handler
	projectID     string
	defaultModule Module
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	module, ok := ModuleFromContext(ctx)
	if !ok {
		module = h.defaultModule
	}
	if module != "" {
		r.AddAttrs(slog.String("module", string(module)))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
		r.AddAttrs(gcpTraceAttrs(ctx, h.projectID)...)
	}

	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{
		next:          h.next.WithAttrs(attrs),
		projectID:     h.projectID,
		defaultModule: h.defaultModule,
	}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{
		next:          h.next.WithGroup(name),
		projectID:     h.projectID,
		defaultModule: h.defaultModule,
	}
}
