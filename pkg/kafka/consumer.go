package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	kafka_config "roomly/pkg/kafka/config"
	"roomly/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// HandlerFunc processes one consumed message. Returning an error triggers a
// retry up to the configured maximum, then the message is skipped.
type HandlerFunc func(ctx context.Context, msg Message) error

// Consumer wraps a kafka-go group reader bound to one topic.
type Consumer struct {
	reader     *kafka.Reader
	handler    HandlerFunc
	maxRetries int
	log        *logger.Logger
	closed     bool
	mu         sync.Mutex
}

func NewConsumer(cfg *kafka_config.Config, topic string, handler HandlerFunc, log *logger.Logger) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.ConsumerGroupID,
		Topic:          topic,
		MinBytes:       cfg.ConsumerMinBytes,
		MaxBytes:       cfg.ConsumerMaxBytes,
		MaxWait:        cfg.ConsumerMaxWait,
		CommitInterval: cfg.ConsumerCommitInterval,
	})

	return &Consumer{
		reader:     reader,
		handler:    handler,
		maxRetries: cfg.ConsumerMaxRetries,
		log:        log,
	}, nil
}

// Run consumes until ctx is cancelled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		raw, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		msg := fromKafkaMessage(raw)

		if err := c.handleWithRetries(ctx, msg); err != nil {
			c.log.Error("Dropping message after retries exhausted",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"event_id", msg.Headers[HeaderEventID],
				"error", err,
			)
		}
	}
}

func (c *Consumer) handleWithRetries(ctx context.Context, msg Message) error {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("Message handling failed",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"event_id", msg.Headers[HeaderEventID],
			"error", err,
		)
	}
	return err
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.reader.Close()
}

func fromKafkaMessage(raw kafka.Message) Message {
	headers := make(map[string]string, len(raw.Headers))
	for _, h := range raw.Headers {
		headers[h.Key] = string(h.Value)
	}

	return Message{
		Key:       string(raw.Key),
		Value:     raw.Value,
		Headers:   headers,
		Topic:     raw.Topic,
		Partition: raw.Partition,
		Offset:    raw.Offset,
		Timestamp: raw.Time,
	}
}
