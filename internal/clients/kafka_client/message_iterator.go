package kafka_client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageReader is satisfied by *kafka.Consumer.
type MessageReader interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
}

type KafkaMessageIterator struct {
	reader     MessageReader
	ctx        context.Context
	retryDelay time.Duration
}

func NewKafkaMessageIterator(ctx context.Context, reader MessageReader) *KafkaMessageIterator {
	return &KafkaMessageIterator{
		reader:     reader,
		ctx:        ctx,
		retryDelay: RETRY_DELAY,
	}
}

// Next blocks until a message arrives or ctx is cancelled. Poll timeouts do
// not count against the retry budget.
func (it *KafkaMessageIterator) Next() (*kafka.Message, error) {
	if it.reader == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	for i := 0; i < MAX_RETRIES; {
		select {
		case <-it.ctx.Done():
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, it.ctx.Err()
		default:
		}

		msg, err := it.reader.ReadMessage(READ_TIMEOUT)
		if err == nil {
			return msg, nil
		}

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) {
			switch kafkaErr.Code() {
			case kafka.ErrTimedOut:
				continue
			case kafka.ErrAllBrokersDown:
				slog.Error("[KafkaIterator] All Kafka brokers are down. Aborting")
				return nil, err
			}
		}

		i++
		slog.Warn("[KafkaIterator] Failed to read message, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_retries", MAX_RETRIES),
			slog.String("error", err.Error()))

		time.Sleep(it.retryDelay)
	}
	return nil, errors.New("[KafkaIterator] Failed to read message after retries")
}
