package provisioning

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ortelius/media-provisioner/model"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ResultProducer publishes batch results to Kafka
type ResultProducer struct {
	Writer MessageWriter
}

// NewResultProducer initializes a Kafka writer for batch results.
// transport may be nil to use the default.
func NewResultProducer(brokers []string, topic string, transport kafka.RoundTripper) *ResultProducer {
	return &ResultProducer{
		Writer: &kafka.Writer{
			Addr:      kafka.TCP(brokers...),
			Topic:     topic,
			Balancer:  &kafka.LeastBytes{},
			Transport: transport,
		},
	}
}

// PublishResult sends a batch-completed event keyed by principal
func (p *ResultProducer) PublishResult(ctx context.Context, principal int64, result *model.BatchResult, report string) error {
	event := BatchCompletedEvent{
		EventType:     BatchCompletedEventType,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Principal:     principal,
		Action:        result.Action,
		Usernames:     result.Usernames,
		Succeeded:     result.Succeeded,
		Failures:      result.Failures(),
		Complete:      result.Complete(),
		Report:        report,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(principal, 10)),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *ResultProducer) Close() error {
	return p.Writer.Close()
}
