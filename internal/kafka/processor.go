// Package kafka wires the provisioning command consumer and result producer to Kafka.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/events/modules/provisioning"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

// GroupID is the consumer group of the command reader
const GroupID = "media-provisioner"

const (
	dialTimeout     = 10 * time.Second
	initialInterval = 1 * time.Second
	maxInterval     = 15 * time.Second
	maxElapsedTime  = 2 * time.Minute

	readRetryInterval = 250 * time.Millisecond
)

// MessageReader is the part of *kafka.Reader the consumer loop needs
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewDialer configures SASL/PLAIN over TLS when credentials are provided,
// otherwise a plain dialer for local development
func NewDialer(cfg config.KafkaConfig) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   dialTimeout,
		DualStack: true,
	}
	if cfg.APIKey != "" && cfg.APISecret != "" {
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.APIKey,
			Password: cfg.APISecret,
		}
		dialer.TLS = &tls.Config{}
	}
	return dialer
}

// NewTransport returns the writer transport matching NewDialer, or nil for
// the default transport
func NewTransport(cfg config.KafkaConfig) kafka.RoundTripper {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil
	}
	return &kafka.Transport{
		DialTimeout: dialTimeout,
		SASL: plain.Mechanism{
			Username: cfg.APIKey,
			Password: cfg.APISecret,
		},
		TLS: &tls.Config{},
	}
}

// WaitForBroker dials the first broker with exponential backoff until it
// answers, the context ends or the retry budget is spent
func WaitForBroker(ctx context.Context, dialer *kafka.Dialer, brokers []string, logger *zap.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = maxElapsedTime

	return backoff.RetryNotify(func() error {
		conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		logger.Warn("Retrying Kafka connection",
			zap.String("broker", brokers[0]),
			zap.Duration("next", next),
			zap.Error(err))
	})
}

// NewResultProducer creates the result producer for the configured topic
func NewResultProducer(cfg config.KafkaConfig) *provisioning.ResultProducer {
	return provisioning.NewResultProducer(cfg.Brokers, cfg.ResultTopic, NewTransport(cfg))
}

// RunCommandProcessor waits for the broker, then consumes command events in
// the background until ctx is cancelled
func RunCommandProcessor(ctx context.Context, cfg config.KafkaConfig, handler provisioning.CommandHandler, logger *zap.Logger) error {
	dialer := NewDialer(cfg)
	if err := WaitForBroker(ctx, dialer, cfg.Brokers, logger); err != nil {
		return err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  GroupID,
		Topic:    cfg.CommandTopic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	go Consume(ctx, reader, handler, logger)
	return nil
}

// Consume reads and handles messages until ctx is cancelled, then closes the
// reader. A bad message is logged and skipped. Read errors back off
// exponentially until the next successful read.
func Consume(ctx context.Context, reader MessageReader, handler provisioning.CommandHandler, logger *zap.Logger) {
	defer reader.Close()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = readRetryInterval
	retry.MaxInterval = maxInterval
	retry.MaxElapsedTime = 0
	retry.Reset()

	logger.Info("Kafka command processor started. Listening for provisioning commands...")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				wait := retry.NextBackOff()
				logger.Warn("Failed to read Kafka message",
					zap.Duration("retry_in", wait),
					zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
				continue
			}
			retry.Reset()
			if _, err := provisioning.HandleCommandEvent(ctx, msg.Value, handler, logger); err != nil {
				logger.Error("Dropping command event",
					zap.Int64("offset", msg.Offset),
					zap.Error(err))
			}
		}
	}
}
