package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageCommitter is satisfied by *kafka.Consumer.
type MessageCommitter interface {
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
}

type KafkaCommitHandler struct {
	committer  MessageCommitter
	ctx        context.Context
	retryDelay time.Duration
}

func NewCommitHandler(ctx context.Context, committer MessageCommitter) *KafkaCommitHandler {
	return &KafkaCommitHandler{
		committer:  committer,
		ctx:        ctx,
		retryDelay: RETRY_DELAY,
	}
}

func (ch *KafkaCommitHandler) Commit(msg *kafka.Message) error {
	if ch.committer == nil {
		return errors.New("[KafkaCommitHandler] Kafka consumer has not been initialized")
	}

	for i := 0; i < MAX_RETRIES; i++ {
		select {
		case <-ch.ctx.Done():
			slog.Warn("[KafkaCommitHandler] Context canceled, stopping commit")
			return ch.ctx.Err()
		default:
		}

		_, err := ch.committer.CommitMessage(msg)
		if err == nil {
			slog.Debug("[KafkaCommitHandler] Successfully committed offset",
				slog.Int("partition", int(msg.TopicPartition.Partition)),
				slog.String("offset", msg.TopicPartition.Offset.String()))
			return nil
		}
		slog.Warn("[KafkaCommitHandler] Failed to commit offset, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()),
			slog.Int("partition", int(msg.TopicPartition.Partition)),
			slog.String("offset", msg.TopicPartition.Offset.String()))

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) && kafkaErr.Code() == kafka.ErrAllBrokersDown {
			slog.Error("[KafkaCommitHandler] All Kafka brokers are down. Aborting commit")
			return err
		}

		time.Sleep(ch.retryDelay)
	}

	return fmt.Errorf("[KafkaCommitHandler] Failed to commit message after %d retries", MAX_RETRIES)
}
