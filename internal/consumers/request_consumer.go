package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/ideaflow/internal/clients/kafka_client"
	"github.com/spacesedan/ideaflow/internal/metrics"
	"github.com/spacesedan/ideaflow/internal/models"
	"github.com/spacesedan/ideaflow/internal/streams"
)

// UNHEALTHY_PAUSE is how long the consumer waits before re-checking its
// dependencies when one of them is unhealthy.
const UNHEALTHY_PAUSE = 5 * time.Second

// Deduper tracks which requests already produced a result.
type Deduper interface {
	IsProcessed(ctx context.Context, key string) bool
	MarkProcessed(ctx context.Context, key string) error
}

type RequestHandler interface {
	Handle(ctx context.Context, req models.IntelligenceRequestEvent) (models.IntelligenceResultEvent, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

type RequestConsumer struct {
	handler RequestHandler
	dedupe  Deduper
	timeout time.Duration
}

func NewRequestConsumer(handler RequestHandler, dedupe Deduper, timeout time.Duration) *RequestConsumer {
	return &RequestConsumer{handler: handler, dedupe: dedupe, timeout: timeout}
}

// Start reads requests until ctx is cancelled. While any health flag is
// false no new messages are read.
func (rc *RequestConsumer) Start(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)

	slog.Info("[RequestConsumer] Listening for messages...")

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[RequestConsumer] Consumer shutting down...")
			return
		default:
		}

		if !allHealthy(health) {
			slog.Warn("[RequestConsumer] Dependencies unhealthy, pausing consumption")
			select {
			case <-ctx.Done():
			case <-time.After(UNHEALTHY_PAUSE):
			}
			continue
		}

		msg, err := iterator.Next()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Error("[RequestConsumer] Kafka Consumer Error", slog.String("error", err.Error()))
			}
			continue
		}

		if err := rc.HandleMessage(ctx, msg, committer); err != nil {
			slog.Error("[RequestConsumer] Message left uncommitted",
				slog.String("error", err.Error()),
				slog.String("offset", msg.TopicPartition.Offset.String()))
		}
	}
}

// HandleMessage processes one message. Undecodable messages and duplicates
// are committed without processing. A message whose result could not be
// published is left uncommitted so it is delivered again.
func (rc *RequestConsumer) HandleMessage(ctx context.Context, msg *kafka.Message, committer Committer) error {
	req, err := streams.ParseRequest(msg.Value)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("kafka", "invalid").Inc()
		slog.Warn("[RequestConsumer] Dropping invalid request",
			slog.String("error", err.Error()),
			slog.String("offset", msg.TopicPartition.Offset.String()))
		return committer.Commit(msg)
	}

	key := req.DedupeKey()
	if rc.dedupe.IsProcessed(ctx, key) {
		metrics.DuplicateRequests.Inc()
		slog.Info("[RequestConsumer] Skipping already processed request", slog.String("key", key))
		return committer.Commit(msg)
	}

	handleCtx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	event, err := rc.handler.Handle(handleCtx, req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("kafka", "publish_error").Inc()
		return fmt.Errorf("[RequestConsumer] question %s: %w", req.QuestionID, err)
	}

	outcome := "success"
	if !event.Success {
		outcome = "analysis_error"
	}
	metrics.RequestsTotal.WithLabelValues("kafka", outcome).Inc()

	if event.Success {
		if err := rc.dedupe.MarkProcessed(ctx, key); err != nil {
			slog.Warn("[RequestConsumer] Failed to mark request processed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	return committer.Commit(msg)
}
