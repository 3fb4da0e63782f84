package consumers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ideaflow/internal/models"
)

type fakeDeduper struct {
	seen    map[string]bool
	marked  []string
	markErr error
}

func (f *fakeDeduper) IsProcessed(_ context.Context, key string) bool { return f.seen[key] }

func (f *fakeDeduper) MarkProcessed(_ context.Context, key string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, key)
	return nil
}

type fakeHandler struct {
	requests []models.IntelligenceRequestEvent
	success  bool
	err      error
}

func (f *fakeHandler) Handle(ctx context.Context, req models.IntelligenceRequestEvent) (models.IntelligenceResultEvent, error) {
	f.requests = append(f.requests, req)
	if _, ok := ctx.Deadline(); !ok {
		return models.IntelligenceResultEvent{}, errors.New("handler called without deadline")
	}
	return models.IntelligenceResultEvent{QuestionID: req.QuestionID, Success: f.success}, f.err
}

type fakeCommitter struct {
	committed []*kafka.Message
	err       error
}

func (f *fakeCommitter) Commit(msg *kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.committed = append(f.committed, msg)
	return nil
}

const validRequest = `{"jobId":"job-1","questionId":"q-1","answers":["great"],"analysisHash":"h1"}`

func message(value string) *kafka.Message {
	return &kafka.Message{Value: []byte(value)}
}

func TestHandleMessage_ProcessesAndCommits(t *testing.T) {
	handler := &fakeHandler{success: true}
	dedupe := &fakeDeduper{}
	committer := &fakeCommitter{}
	rc := NewRequestConsumer(handler, dedupe, time.Second)

	msg := message(`{"data":{"payload":` + validRequestQuoted() + `}}`)
	require.NoError(t, rc.HandleMessage(context.Background(), msg, committer))

	require.Len(t, handler.requests, 1)
	assert.Equal(t, "q-1", handler.requests[0].QuestionID)
	assert.Equal(t, []string{"q-1:h1"}, dedupe.marked)
	assert.Equal(t, []*kafka.Message{msg}, committer.committed)
}

func TestHandleMessage_PoisonMessageIsCommitted(t *testing.T) {
	handler := &fakeHandler{success: true}
	committer := &fakeCommitter{}
	rc := NewRequestConsumer(handler, &fakeDeduper{}, time.Second)

	for _, body := range []string{`not json`, `{"jobId":"job-1"}`} {
		msg := message(body)
		require.NoError(t, rc.HandleMessage(context.Background(), msg, committer))
	}

	assert.Empty(t, handler.requests)
	assert.Len(t, committer.committed, 2)
}

func TestHandleMessage_DuplicateIsSkipped(t *testing.T) {
	handler := &fakeHandler{success: true}
	dedupe := &fakeDeduper{seen: map[string]bool{"q-1:h1": true}}
	committer := &fakeCommitter{}
	rc := NewRequestConsumer(handler, dedupe, time.Second)

	require.NoError(t, rc.HandleMessage(context.Background(), message(validRequest), committer))

	assert.Empty(t, handler.requests)
	assert.Empty(t, dedupe.marked)
	assert.Len(t, committer.committed, 1)
}

func TestHandleMessage_PublishFailureLeavesUncommitted(t *testing.T) {
	handler := &fakeHandler{success: true, err: errors.New("stream unavailable")}
	dedupe := &fakeDeduper{}
	committer := &fakeCommitter{}
	rc := NewRequestConsumer(handler, dedupe, time.Second)

	err := rc.HandleMessage(context.Background(), message(validRequest), committer)
	require.Error(t, err)
	assert.ErrorIs(t, err, handler.err)
	assert.Empty(t, dedupe.marked)
	assert.Empty(t, committer.committed)
}

func TestHandleMessage_FailedAnalysisIsCommittedButNotMarked(t *testing.T) {
	handler := &fakeHandler{success: false}
	dedupe := &fakeDeduper{}
	committer := &fakeCommitter{}
	rc := NewRequestConsumer(handler, dedupe, time.Second)

	require.NoError(t, rc.HandleMessage(context.Background(), message(validRequest), committer))
	assert.Empty(t, dedupe.marked)
	assert.Len(t, committer.committed, 1)
}

func TestHandleMessage_MarkFailureStillCommits(t *testing.T) {
	handler := &fakeHandler{success: true}
	dedupe := &fakeDeduper{markErr: errors.New("valkey down")}
	committer := &fakeCommitter{}
	rc := NewRequestConsumer(handler, dedupe, time.Second)

	require.NoError(t, rc.HandleMessage(context.Background(), message(validRequest), committer))
	assert.Len(t, committer.committed, 1)
}

func TestHandleMessage_CommitError(t *testing.T) {
	committer := &fakeCommitter{err: errors.New("rebalance")}
	rc := NewRequestConsumer(&fakeHandler{success: true}, &fakeDeduper{}, time.Second)

	err := rc.HandleMessage(context.Background(), message(validRequest), committer)
	assert.ErrorIs(t, err, committer.err)
}

func TestAllHealthy(t *testing.T) {
	up := &atomic.Bool{}
	up.Store(true)
	down := &atomic.Bool{}

	assert.True(t, allHealthy(nil))
	assert.True(t, allHealthy([]*atomic.Bool{up, nil}))
	assert.False(t, allHealthy([]*atomic.Bool{up, down}))
}

func TestConsumerWrapper_PassesHealthChecks(t *testing.T) {
	first := &atomic.Bool{}
	second := &atomic.Bool{}

	var got []*atomic.Bool
	fn := func(_ context.Context, _ *kafka.Consumer, health ...*atomic.Bool) {
		got = health
	}

	WrapConsumer(fn, first).WithHealthCheck(second).Handler()(context.Background(), nil)
	assert.Equal(t, []*atomic.Bool{first, second}, got)
}

func validRequestQuoted() string {
	return `"{\"jobId\":\"job-1\",\"questionId\":\"q-1\",\"answers\":[\"great\"],\"analysisHash\":\"h1\"}"`
}
