package event

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// Message header names
const (
	HeaderEventType     = "event_type"
	HeaderEventID       = "event_id"
	HeaderAggregateType = "aggregate_type"
)

// MessageWriter is the subset of *kafka.Writer the forwarder needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka writer
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// NewKafkaWriter creates a writer that keys messages by aggregate so events
// of one invoice stay ordered within a partition
func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
}

// KafkaForwarder is a wildcard event handler that forwards every domain
// event to a Kafka topic as JSON, carrying the trace context in headers.
type KafkaForwarder struct {
	writer     MessageWriter
	serializer *EventSerializer
	propagator propagation.TextMapPropagator
	logger     *zap.Logger
}

// NewKafkaForwarder creates a new KafkaForwarder
func NewKafkaForwarder(writer MessageWriter, serializer *EventSerializer, log *zap.Logger) *KafkaForwarder {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaForwarder{
		writer:     writer,
		serializer: serializer,
		propagator: otel.GetTextMapPropagator(),
		logger:     log,
	}
}

// Handle writes the event to Kafka
func (f *KafkaForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	msg, err := f.Message(ctx, event)
	if err != nil {
		return err
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", event.EventType(), err)
	}
	f.logger.Debug("event forwarded to kafka",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()))
	return nil
}

// Message builds the Kafka message for an event
func (f *KafkaForwarder) Message(ctx context.Context, event shared.DomainEvent) (kafka.Message, error) {
	payload, err := f.serializer.Serialize(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serialize %s: %w", event.EventType(), err)
	}

	carrier := headerCarrier{
		{Key: HeaderEventType, Value: []byte(event.EventType())},
		{Key: HeaderEventID, Value: []byte(event.EventID().String())},
		{Key: HeaderAggregateType, Value: []byte(event.AggregateType())},
	}
	f.propagator.Inject(ctx, &carrier)

	return kafka.Message{
		Key:     []byte(event.AggregateType() + "-" + strconv.FormatInt(event.AggregateID(), 10)),
		Value:   payload,
		Headers: carrier,
		Time:    event.OccurredAt(),
	}, nil
}

// EventTypes subscribes to all events
func (f *KafkaForwarder) EventTypes() []string { return nil }

// Close flushes and closes the writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

// headerCarrier adapts Kafka headers to the OpenTelemetry propagation API
type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
