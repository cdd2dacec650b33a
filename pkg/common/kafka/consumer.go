package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

const (
	// handlerTimeout bounds a single handler call.
	handlerTimeout = 30 * time.Second

	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

type Consumer struct {
	reader messageReader

	retryBase time.Duration
	retryMax  time.Duration

	processed atomic.Int64
	failed    atomic.Int64
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  time.Second,
	})

	return newConsumer(reader)
}

func newConsumer(reader messageReader) *Consumer {
	return &Consumer{reader: reader, retryBase: retryBaseDelay, retryMax: retryMaxDelay}
}

// Consume runs handler for every message until ctx is cancelled. Group offsets
// are cumulative, so a failed message is retried with backoff before the next
// one is fetched; it is committed only once handler succeeds.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			continue
		}

		var event models.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal event")
			c.commit(ctx, message)
			continue
		}

		if err := c.handle(ctx, handler, event); err != nil {
			return err
		}

		c.processed.Add(1)
		c.commit(ctx, message)
	}
}

// handle calls handler until it succeeds. It returns only ctx's error.
func (c *Consumer) handle(ctx context.Context, handler EventHandler, event models.Event) error {
	delay := c.retryBase
	for attempt := 1; ; attempt++ {
		handlerCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
		err := handler(handlerCtx, event)
		cancel()
		if err == nil {
			return nil
		}

		c.failed.Add(1)
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
			"attempt":    attempt,
			"retry_in":   delay.String(),
		}).Error("Failed to process event")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > c.retryMax {
			delay = c.retryMax
		}
	}
}

func (c *Consumer) commit(ctx context.Context, message kafka.Message) {
	if err := c.reader.CommitMessages(ctx, message); err != nil {
		logger.Log.WithError(err).Error("Failed to commit message")
	}
}

func (c *Consumer) Close() error {
	logger.Log.WithFields(map[string]interface{}{
		"topic":     c.reader.Config().Topic,
		"processed": c.processed.Load(),
		"failed":    c.failed.Load(),
	}).Info("Consumer closed")
	return c.reader.Close()
}
