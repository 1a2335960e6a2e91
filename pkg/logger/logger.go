package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Format selects the handler output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ContextExtractor pulls an attribute out of the context at log time.
// Returning false skips the attribute for that record.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type settings struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// Option configures logger construction.
type Option func(*settings)

// WithLevel sets the minimum record level.
func WithLevel(l slog.Level) Option {
	return func(s *settings) { s.level = l }
}

// WithFormat sets the output encoding. Unknown values fall back to JSON.
func WithFormat(f Format) Option {
	return func(s *settings) { s.format = f }
}

// WithOutput redirects log output. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.output = w
		}
	}
}

// WithAttrs attaches static attributes to every record.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(s *settings) { s.attrs = append(s.attrs, attrs...) }
}

// WithContextExtractors registers per-record context extractors.
// Nil extractors are dropped.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(s *settings) {
		for _, ex := range extractors {
			if ex != nil {
				s.extractors = append(s.extractors, ex)
			}
		}
	}
}

// WithEnvironment applies conventional defaults for the deployment
// environment: production and staging log JSON at info level, anything else
// logs text at debug level. The service name is attached to every record.
func WithEnvironment(env, service string) Option {
	return func(s *settings) {
		switch env {
		case "production", "prod", "staging", "stage":
			s.level = slog.LevelInfo
			s.format = FormatJSON
		default:
			s.level = slog.LevelDebug
			s.format = FormatText
		}
		if service != "" {
			s.attrs = append(s.attrs,
				slog.String("service", service),
				slog.String("env", env),
			)
		}
	}
}

// New builds a logger from the options. Defaults are JSON at info level on
// stdout, which is what production log shippers expect.
func New(opts ...Option) *slog.Logger {
	s := &settings{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	handlerOpts := &slog.HandlerOptions{Level: s.level}
	var handler slog.Handler
	if s.format == FormatText {
		handler = slog.NewTextHandler(s.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(s.output, handlerOpts)
	}
	if len(s.attrs) > 0 {
		handler = handler.WithAttrs(s.attrs)
	}
	if len(s.extractors) > 0 {
		handler = &contextHandler{next: handler, extractors: s.extractors}
	}
	return slog.New(handler)
}

// SetAsDefault installs the logger as the process-wide slog default.
func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// contextHandler decorates a handler with per-record context extraction, so
// request-scoped values are read fresh on every log call.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
