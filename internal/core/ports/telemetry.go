package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals that a set of apps is planned for a command.
	EmitPlan(ctx context.Context, command string, appNames []string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// App attributes the span to an app.
	App string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithApp attributes a span to the named app.
func WithApp(name string) SpanOption {
	return func(c *SpanConfig) {
		c.App = name
	}
}
