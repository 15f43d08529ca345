package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for progress output.
// It decouples telemetry collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes any buffered output.
	Stop() error

	// OnPlanEmit is called once the apps of a command are known.
	OnPlanEmit(command string, apps []string)

	// OnTaskStart is called when a span begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a span emits output.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a span finishes; err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
