package processing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ideaflow/internal/analysis"
	"github.com/spacesedan/ideaflow/internal/models"
)

type fakeStore struct {
	docs []models.AnalysisDocument
	err  error
}

func (f *fakeStore) SaveAnalysis(_ context.Context, doc models.AnalysisDocument) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

type fakePublisher struct {
	name   string
	events []models.IntelligenceResultEvent
	err    error
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) PublishResult(_ context.Context, event models.IntelligenceResultEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

var fixedNow = time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

func newTestProcessor(t *testing.T, store AnalysisStore, opts Options, pubs ...Publisher) *Processor {
	t.Helper()
	lex, err := analysis.NewLexicon([]string{"great", "good"}, []string{"bad", "terrible"}, nil)
	require.NoError(t, err)
	if opts.ModelVersion == "" {
		opts.ModelVersion = "speed-lexicon-v1"
	}
	return NewProcessor(lex, store, pubs, clockwork.NewFakeClockAt(fixedNow), opts)
}

func request(answers ...string) models.IntelligenceRequestEvent {
	return models.IntelligenceRequestEvent{
		JobID:        "job-1",
		FormID:       "form-1",
		SnapshotID:   "snap-1",
		WindowKey:    "2024-03",
		QuestionID:   "q-1",
		QuestionText: "How was it?",
		Answers:      answers,
		AnalysisHash: "hash-1",
	}
}

func TestProcess_Success(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{})

	event := p.Process(context.Background(), request("great product", "  ", "terrible support", "okay"))

	assert.True(t, event.Success)
	assert.Nil(t, event.AnalysisError)
	assert.Equal(t, "job-1", event.JobID)
	assert.Equal(t, "form-1", event.FormID)
	assert.Equal(t, "snap-1", event.SnapshotID)
	assert.Equal(t, "2024-03", event.WindowKey)
	assert.Equal(t, "q-1", event.QuestionID)
	assert.Equal(t, "hash-1", event.AnalysisHash)
	assert.Equal(t, "2024-03-10T08:30:00Z", event.LastEnrichedAt)
	assert.Equal(t, "speed-lexicon-v1", event.ModelVersion)

	require.NotNil(t, event.Sentiment)
	assert.InDelta(t, 100.0/3, event.Sentiment.PositivePct, 1e-9)
	assert.InDelta(t, 100.0/3, event.Sentiment.NeutralPct, 1e-9)
	assert.InDelta(t, 100.0/3, event.Sentiment.NegativePct, 1e-9)
	assert.NotEmpty(t, event.TopIdeas)

	require.Len(t, store.docs, 1)
	doc := store.docs[0]
	assert.Equal(t, "q-1", doc.QuestionID)
	assert.Equal(t, "How was it?", doc.QuestionText)
	assert.Equal(t, "form-1", doc.FormID)
	assert.Equal(t, "job-1", doc.JobID)
	assert.Equal(t, "hash-1", doc.AnalysisHash)
	assert.Equal(t, "speed-lexicon-v1", doc.ModelVersion)
	assert.Equal(t, fixedNow, doc.Timestamp)

	require.Len(t, doc.Answers, 3)
	assert.Equal(t, models.AnalyzedAnswer{Index: 0, AnswerText: "great product", SentimentScore: 0.75, SentimentLabel: "POSITIVE"}, doc.Answers[0])
	assert.Equal(t, models.AnalyzedAnswer{Index: 1, AnswerText: "terrible support", SentimentScore: 0.25, SentimentLabel: "NEGATIVE"}, doc.Answers[1])
	assert.Equal(t, models.AnalyzedAnswer{Index: 2, AnswerText: "okay", SentimentScore: 0.5, SentimentLabel: "NEUTRAL"}, doc.Answers[2])
	assert.InDelta(t, 0.5, doc.AggregateSentimentScore, 1e-9)
	assert.Equal(t, "NEUTRAL", doc.AggregateSentimentLabel)

	require.Len(t, doc.ClusterSummaries, len(event.TopIdeas))
	for i, idea := range event.TopIdeas {
		assert.Equal(t, idea.Idea, doc.ClusterSummaries[i].Summary)
		require.NotNil(t, doc.ClusterSummaries[i].Count)
		assert.Equal(t, idea.Count, *doc.ClusterSummaries[i].Count)
	}
}

func TestProcess_EmptyAnswers(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{})

	event := p.Process(context.Background(), request())

	assert.True(t, event.Success)
	assert.Equal(t, []models.IdeaItem{{Idea: analysis.MixedPerspectives, Count: 1}}, event.TopIdeas)
	require.NotNil(t, event.Sentiment)
	assert.Equal(t, models.SentimentPayload{}, *event.Sentiment)

	require.Len(t, store.docs, 1)
	assert.Empty(t, store.docs[0].Answers)
	assert.Equal(t, "NEUTRAL", store.docs[0].AggregateSentimentLabel)
}

func TestProcess_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("table unavailable")}
	p := newTestProcessor(t, store, Options{ModelVersion: "v9"})

	event := p.Process(context.Background(), request("great product"))

	assert.False(t, event.Success)
	assert.Nil(t, event.Sentiment)
	assert.Empty(t, event.TopIdeas)
	require.NotNil(t, event.AnalysisError)
	assert.Contains(t, *event.AnalysisError, "table unavailable")
	assert.Equal(t, "q-1", event.QuestionID)
	assert.Equal(t, "v9", event.ModelVersion)
	assert.Equal(t, "2024-03-10T08:30:00Z", event.LastEnrichedAt)
}

func TestProcess_VaderCrossCheck(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{VaderCrossCheck: true})

	p.Process(context.Background(), request("great product, I love it"))

	require.Len(t, store.docs, 1)
	answer := store.docs[0].Answers[0]
	require.NotNil(t, answer.VaderScore)
	assert.Greater(t, *answer.VaderScore, 0.0)
	assert.Equal(t, "POSITIVE", answer.VaderLabel)
}

func TestProcess_VaderDisabledLeavesFieldsEmpty(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{})

	p.Process(context.Background(), request("great product"))

	require.Len(t, store.docs, 1)
	assert.Nil(t, store.docs[0].Answers[0].VaderScore)
	assert.Empty(t, store.docs[0].Answers[0].VaderLabel)
}

func TestHandle_PublishesToEveryPublisher(t *testing.T) {
	stream := &fakePublisher{name: "stream"}
	topic := &fakePublisher{name: "topic"}
	p := newTestProcessor(t, &fakeStore{}, Options{}, stream, topic)

	event, err := p.Handle(context.Background(), request("good"))
	require.NoError(t, err)

	require.Len(t, stream.events, 1)
	require.Len(t, topic.events, 1)
	assert.Equal(t, event, stream.events[0])
	assert.Equal(t, event, topic.events[0])
}

func TestHandle_PublishesFailureEvents(t *testing.T) {
	stream := &fakePublisher{name: "stream"}
	p := newTestProcessor(t, &fakeStore{err: errors.New("down")}, Options{}, stream)

	event, err := p.Handle(context.Background(), request("good"))
	require.NoError(t, err)
	assert.False(t, event.Success)
	require.Len(t, stream.events, 1)
	assert.False(t, stream.events[0].Success)
}

func TestHandle_PublishError(t *testing.T) {
	broken := &fakePublisher{name: "stream", err: errors.New("connection refused")}
	healthy := &fakePublisher{name: "topic"}
	p := newTestProcessor(t, &fakeStore{}, Options{}, broken, healthy)

	event, err := p.Handle(context.Background(), request("good"))
	require.Error(t, err)
	assert.ErrorIs(t, err, broken.err)
	assert.Contains(t, err.Error(), "stream")
	assert.True(t, event.Success)
	assert.Len(t, healthy.events, 1, "remaining publishers are still attempted")
}
