// catinci-showme - kid-safe "show me" webhook
// Copyright (C) 2026  catinci-showme contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.


package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	// OutboxTopic is where the webhook publishes messages it wants sent.
	OutboxTopic = "sms-outbox"

	// DLQTopic receives messages that exhausted all retries so they can be
	// inspected and replayed without blocking the relay.
	DLQTopic = "sms-dlq"

	// ConsumerGroup is the relay's Kafka consumer group.
	ConsumerGroup = "catinci-showme-sms-sender"

	maxRetries = 3
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

// Publisher is a Sender that hands messages to the outbox topic instead of
// a provider. Send returns once the broker has acknowledged the record;
// delivery happens later in the relay.
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a Publisher writing to OutboxTopic on brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{writer: newWriter(brokers, OutboxTopic)}
}

// Send publishes msg keyed by its ID.
func (p *Publisher) Send(ctx context.Context, msg OutboundMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(msg.ID), Value: value}); err != nil {
		return fmt.Errorf("publish to %s: %w", OutboxTopic, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Consumer reads OutboundMessages from the outbox and delivers them via a
// Sender. Offsets are committed after each message, successful or routed
// to the DLQ, giving at-least-once delivery.
type Consumer struct {
	reader  messageReader
	dlq     messageWriter
	sender  Sender
	logger  *zap.Logger
	backoff func(attempt int) time.Duration
}

// NewConsumer creates a Consumer connected to the given Kafka brokers.
func NewConsumer(brokers []string, sender Sender, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          OutboxTopic,
		GroupID:        ConsumerGroup,
		MinBytes:       1,
		MaxBytes:       1 << 20, // 1 MiB
		CommitInterval: 0,       // explicit commits only
		StartOffset:    kafka.LastOffset,
	})
	return &Consumer{
		reader:  reader,
		dlq:     newWriter(brokers, DLQTopic),
		sender:  sender,
		logger:  logger,
		backoff: linearBackoff,
	}
}

func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}

// Run blocks, consuming messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consuming outbox", zap.String("topic", OutboxTopic))

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch: %w", err)
		}

		if err := c.dispatch(ctx, m); err != nil {
			c.logger.Error("routed message to DLQ",
				zap.ByteString("key", m.Key), zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Warn("commit failed, message may be redelivered", zap.Error(err))
		}
	}
}

// Close releases all Kafka resources.
func (c *Consumer) Close() error {
	rerr := c.reader.Close()
	werr := c.dlq.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// dispatch tries to send m up to maxRetries times. If every attempt fails
// the raw record goes to the DLQ and the last error is returned.
func (c *Consumer) dispatch(ctx context.Context, m kafka.Message) error {
	var msg OutboundMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return c.sendToDLQ(ctx, m, fmt.Errorf("unmarshal: %w", err))
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.sender.Send(ctx, msg)
		if lastErr == nil {
			c.logger.Info("sent",
				zap.String("id", msg.ID),
				zap.String("to", MaskNumber(msg.To)),
				zap.Int("attempt", attempt))
			return nil
		}

		c.logger.Warn("send attempt failed",
			zap.String("id", msg.ID),
			zap.Int("attempt", attempt),
			zap.Int("max", maxRetries),
			zap.Error(lastErr))

		if attempt < maxRetries {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return c.sendToDLQ(ctx, m, lastErr)
}

func (c *Consumer) sendToDLQ(ctx context.Context, original kafka.Message, reason error) error {
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:   original.Key,
		Value: original.Value,
	})
	if err != nil {
		c.logger.Error("could not write to DLQ", zap.Error(err))
	}
	return reason
}
