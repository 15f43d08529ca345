package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/lingo/internal/adapters/telemetry"
	"go.trai.ch/lingo/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_SpanLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var rootID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "lingo build", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { rootID = id }),
		renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Cond(func(x any) bool { return x == rootID }), "hello: codegen", gomock.Any()),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)

	ctx, root := tp.Tracer("test").Start(context.Background(), "lingo build")
	_, child := tp.Tracer("test").Start(ctx, "hello: codegen")
	child.End()
	root.End()
}

func TestBridge_ErrorStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Cond(func(x any) bool {
		err, ok := x.(error)
		return ok && err.Error() == "exit status 2"
	}))

	_, span := tp.Tracer("test").Start(context.Background(), "hello: compile")
	span.SetStatus(codes.Error, "exit status 2")
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	require.NotPanics(t, func() {
		_, span := tp.Tracer("test").Start(context.Background(), "span")
		span.End()
	})
}

func TestBridge_FlushAndShutdown(t *testing.T) {
	bridge := telemetry.NewBridge(nil)
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}
