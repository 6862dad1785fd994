package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func initTestTracer(t *testing.T) {
	t.Helper()
	shutdown, err := InitTracer(Config{ServiceName: "bookworld-test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
}

func TestInitTracer_EnabledWithoutEndpoint(t *testing.T) {
	_, err := InitTracer(Config{Enabled: true})
	assert.Error(t, err)
}

func TestStartSpan_ChildSharesTraceID(t *testing.T) {
	initTestTracer(t)

	ctx, root := StartSpan(context.Background(), "order", "PlaceOrder",
		attribute.String("user_id", "u-1"))
	defer root.End()

	traceID := ExtractTraceID(ctx)
	require.Len(t, traceID, 32)

	childCtx, child := StartSpan(ctx, "order", "order.Transaction")
	EndSpan(child, errors.New("库存不足"))

	assert.Equal(t, traceID, ExtractTraceID(childCtx))
	assert.NotEqual(t, ExtractSpanID(ctx), ExtractSpanID(childCtx))
}

func TestExtractIDs_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(0).Description(), "AlwaysOn")
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0.1).Description(), "TraceIDRatioBased")
}
