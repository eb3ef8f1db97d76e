package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerConfig tunes the underlying kafka-go writer.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig favors delivery guarantees over throughput:
// synchronous writes acknowledged by all replicas.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// Producer publishes envelope events. Messages are keyed by aggregate ID
// so events for one aggregate stay ordered within a partition.
type Producer struct {
	writer  *kafka.Writer
	brokers []string
	log     *slog.Logger
}

// NewProducer builds a Producer from cfg. The writer connects lazily on
// the first Publish.
func NewProducer(cfg ProducerConfig, log *slog.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    cfg.BatchSize,
			BatchTimeout: cfg.BatchTimeout,
			Async:        cfg.Async,
			RequiredAcks: kafka.RequireAll,
		},
		brokers: cfg.Brokers,
		log:     log,
	}
}

// Publish writes the event to topic. Event type, source, and any
// correlation ID ride along as message headers so consumers can filter
// without decoding the body.
func (p *Producer) Publish(ctx context.Context, topic string, e *Event) error {
	msg, err := messageFor(topic, e)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.ErrorContext(ctx, "event publish failed",
			slog.String("topic", topic),
			slog.String("type", e.Type),
			slog.Any("error", err),
		)
		return fmt.Errorf("kafka: write %s to %s: %w", e.Type, topic, err)
	}

	p.log.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("type", e.Type),
		slog.String("aggregate", e.AggregateID),
	)
	return nil
}

func messageFor(topic string, e *Event) (kafka.Message, error) {
	body, err := e.Marshal()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.Type)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(e.AggregateID),
		Value:   body,
		Headers: headers,
	}, nil
}

// Ping reports whether any configured broker answers.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers probes each broker in turn and succeeds on the first one
// that answers a metadata request.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}

	var probeErrs []error
	for _, addr := range brokers {
		if err := probeBroker(ctx, addr); err != nil {
			probeErrs = append(probeErrs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka: no broker reachable: %w", errors.Join(probeErrs...))
}

func probeBroker(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Brokers()
	return err
}

// Close flushes buffered messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
