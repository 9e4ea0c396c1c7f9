package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// MessageHandler processes one record. A returned error leaves the offset
// unmarked so the record is redelivered after a rebalance or restart.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer drives a consumer group until its context ends.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("kafka: consumer needs a handler")
	}
	cfg = baseConfig(cfg)
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: consumer group %q: %w", groupID, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{group: group, handler: handler, logger: logger.With("component", "kafka-consumer", "group", groupID)}, nil
}

// Run rejoins the group after every rebalance. It returns nil once ctx is
// cancelled or the group is closed.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	go c.drainErrors(ctx)
	claims := &claimLoop{handler: c.handler, logger: c.logger}
	for {
		err := c.group.Consume(ctx, topics, claims)
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		case err != nil:
			return fmt.Errorf("kafka: consume %v: %w", topics, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) drainErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.group.Errors():
			if !ok {
				return
			}
			c.logger.WarnContext(ctx, "consumer group error", slog.String("error", err.Error()))
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimLoop struct {
	handler MessageHandler
	logger  *slog.Logger
}

func (l *claimLoop) Setup(sess sarama.ConsumerGroupSession) error {
	l.logger.Info("partitions assigned", slog.Any("claims", sess.Claims()))
	return nil
}

func (l *claimLoop) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (l *claimLoop) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := l.handler.Handle(ctx, msg); err != nil {
				// redelivery is safe, bookings go through the idempotency store
				l.logger.ErrorContext(ctx, "message not processed",
					slog.String("topic", msg.Topic),
					slog.Int("partition", int(msg.Partition)),
					slog.Int64("offset", msg.Offset),
					slog.String("error", err.Error()))
				continue
			}
			sess.MarkMessage(msg, "")
		}
	}
}
