package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type notificationMessage struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

type KafkaSink struct {
	writer kafkaMessageWriter
	topic  string
}

func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = "salesbot-notifications"
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaSink{writer: writer, topic: cfg.Topic}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, message string) error {
	_, span := otel.Tracer("salesbot/notify").Start(ctx, "notify.kafka_publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(attribute.String("messaging.destination", s.topic))

	payload, err := json.Marshal(notificationMessage{Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.topic,
		Value: payload,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
