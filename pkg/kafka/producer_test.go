package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	payload := orderPayload{OrderID: "ord-123", Amount: 4999}
	event, err := NewEvent("order.placed", "ord-123", "order", "storefront", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "order.placed", event.Type)
	assert.Equal(t, "ord-123", event.AggregateID)
	assert.Equal(t, "order", event.AggregateKind)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, 1, event.SchemaVersion)
	assert.WithinDuration(t, time.Now().UTC(), event.OccurredAt, 2*time.Second)

	var decoded orderPayload
	require.NoError(t, event.DecodePayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("order.placed", "ord-1", "order", "storefront", make(chan int))
	require.Error(t, err)
}

func TestEvent_RoundTrip(t *testing.T) {
	original, err := NewEvent("product.updated", "prod-456", "product", "storefront",
		map[string]string{"name": "Trail Sneakers"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-abc").WithMetadata("actor", "admin")

	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := DecodeEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Type, restored.Type)
	assert.Equal(t, original.CorrelationID, restored.CorrelationID)
	assert.Equal(t, original.Metadata, restored.Metadata)
	assert.JSONEq(t, string(original.Payload), string(restored.Payload))
	assert.WithinDuration(t, original.OccurredAt, restored.OccurredAt, time.Millisecond)
}

func TestEvent_BuildersChain(t *testing.T) {
	event := &Event{ID: "e-1"}

	same := event.WithCorrelationID("corr-xyz").WithMetadata("k1", "v1").WithMetadata("k2", "v2")

	assert.Same(t, event, same)
	assert.Equal(t, "corr-xyz", event.CorrelationID)
	assert.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, event.Metadata)
}

func TestEvent_DecodePayload_BadPayload(t *testing.T) {
	event := &Event{Type: "order.placed", Payload: json.RawMessage(`not json`)}

	var target map[string]string
	err := event.DecodePayload(&target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.placed")
}

func TestDecodeEvent_BadInput(t *testing.T) {
	for _, raw := range [][]byte{[]byte(`{broken`), {}} {
		_, err := DecodeEvent(raw)
		require.Error(t, err)
	}
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async, "defaults should favor synchronous delivery")
}

func TestMessageFor_HeadersAndKey(t *testing.T) {
	event, err := NewEvent("order.placed", "ord-9", "order", "storefront", orderPayload{OrderID: "ord-9"})
	require.NoError(t, err)

	msg, err := messageFor("rststore.order.placed", event)
	require.NoError(t, err)

	assert.Equal(t, "rststore.order.placed", msg.Topic)
	assert.Equal(t, []byte("ord-9"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("order.placed"), msg.Headers[0].Value)
	assert.Equal(t, "source", msg.Headers[1].Key)

	event.WithCorrelationID("corr-55")
	msg, err = messageFor("rststore.order.placed", event)
	require.NoError(t, err)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "correlation_id", msg.Headers[2].Key)
	assert.Equal(t, []byte("corr-55"), msg.Headers[2].Value)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "rststore", TopicPrefix)

	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"order", "placed", "rststore.order.placed"},
		{"order", "paid", "rststore.order.paid"},
		{"review", "created", "rststore.review.created"},
		{"user", "registered", "rststore.user.registered"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
	}
}

func TestNewProducer_LazyConnection(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)

	// No broker is running; Close must still succeed since nothing connected.
	assert.NoError(t, p.Close())
}

func TestPingBrokers_RequiresBrokers(t *testing.T) {
	for _, brokers := range [][]string{nil, {}} {
		err := PingBrokers(t.Context(), brokers)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no brokers configured")
	}
}
