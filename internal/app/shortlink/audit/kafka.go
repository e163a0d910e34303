package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes JSON events keyed by actor, so one user's events stay
// ordered within a partition.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			Async:                  true,
			AllowAutoTopicCreation: true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					slog.Error("kafka audit delivery failed", "messages", len(messages), "err", err)
				}
			},
		},
	}
}

func (k *KafkaSink) Write(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	// Async writer: this only enqueues, so a request-scoped ctx is fine.
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Actor),
		Value: data,
	})
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
