package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type orderPlaced struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Total   int64  `json:"total"`
}

func TestBuildPublishing(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	msg, err := buildPublishing(context.Background(), "order.placed",
		orderPlaced{OrderID: "o-1", UserID: "u-1", Total: 119000}, now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "order.placed", msg.Type)
	assert.Equal(t, now, msg.Timestamp)
	assert.NotEmpty(t, msg.MessageId)

	var got orderPlaced
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, "o-1", got.OrderID)
	assert.Equal(t, int64(119000), got.Total)
}

func TestBuildPublishing_Unmarshalable(t *testing.T) {
	_, err := buildPublishing(context.Background(), "order.placed", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestHeaderCarrier_PropagatesTrace(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg, err := buildPublishing(ctx, "order.placed", orderPlaced{OrderID: "o-1"}, time.Now())
	require.NoError(t, err)
	require.Contains(t, msg.Headers, "traceparent")

	extracted := otel.GetTextMapPropagator().Extract(context.Background(), headerCarrier(msg.Headers))
	assert.Equal(t,
		span.SpanContext().TraceID(),
		trace.SpanContextFromContext(extracted).TraceID())
}

func TestShouldRequeue(t *testing.T) {
	assert.True(t, shouldRequeue(false))
	assert.False(t, shouldRequeue(true))
}

func TestNoopPublisher(t *testing.T) {
	var p EventPublisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "order.placed", orderPlaced{}))
	assert.NoError(t, p.Close())
}
