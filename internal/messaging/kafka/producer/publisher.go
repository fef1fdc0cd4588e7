package producer

import (
	"context"

	"approval-portal/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// publishEvent keys the message by application number so every event for
// one application lands on the same partition, in order.
func publishEvent(ctx context.Context, writer *kafkago.Writer, event kafka.OutboxEvent) error {
	msg := kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.ApplnNo),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "module", Value: []byte(event.Module)},
		},
	}

	return writer.WriteMessages(ctx, msg)
}
