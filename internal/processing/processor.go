package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/ideaflow/internal/analysis"
	"github.com/spacesedan/ideaflow/internal/metrics"
	"github.com/spacesedan/ideaflow/internal/models"
	"github.com/spacesedan/ideaflow/internal/sentiment"
)

// AnalysisStore persists one analysis document per question.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, doc models.AnalysisDocument) error
}

// Publisher delivers result events downstream.
type Publisher interface {
	Name() string
	PublishResult(ctx context.Context, event models.IntelligenceResultEvent) error
}

type Options struct {
	ModelVersion    string
	VaderCrossCheck bool
}

// Processor turns validated requests into stored analyses and result events.
type Processor struct {
	lexicon    *analysis.Lexicon
	store      AnalysisStore
	publishers []Publisher
	clock      clockwork.Clock
	opts       Options
}

func NewProcessor(lex *analysis.Lexicon, store AnalysisStore, publishers []Publisher, clock clockwork.Clock, opts Options) *Processor {
	return &Processor{
		lexicon:    lex,
		store:      store,
		publishers: publishers,
		clock:      clock,
		opts:       opts,
	}
}

// Process analyzes req and stores the outcome. It always yields a result
// event; a storage failure produces a failed event carrying the error text.
func (p *Processor) Process(ctx context.Context, req models.IntelligenceRequestEvent) models.IntelligenceResultEvent {
	start := p.clock.Now()
	result := analysis.Analyze(req.Answers, p.lexicon)
	metrics.AnalysisDuration.Observe(p.clock.Since(start).Seconds())

	doc := p.document(req, result)
	if err := p.store.SaveAnalysis(ctx, doc); err != nil {
		metrics.StoreErrors.WithLabelValues("save_analysis").Inc()
		slog.Warn("[Processor] analysis failed",
			slog.String("question_id", req.QuestionID),
			slog.String("error", err.Error()))
		return p.failure(req, fmt.Errorf("failed to save analysis: %w", err))
	}

	for _, a := range result.Answers {
		metrics.AnswersAnalyzed.WithLabelValues(string(a.Label)).Inc()
	}

	ideas := make([]models.IdeaItem, len(result.Ideas))
	for i, idea := range result.Ideas {
		ideas[i] = models.IdeaItem{Idea: idea.Summary, Count: idea.Count}
	}

	slog.Info("[Processor] Analyzed question",
		slog.String("question_id", req.QuestionID),
		slog.Int("answers", len(result.Answers)),
		slog.Int("ideas", len(ideas)),
		slog.String("label", string(result.Label)))

	event := p.event(req)
	event.Success = true
	event.TopIdeas = ideas
	event.Sentiment = &models.SentimentPayload{
		PositivePct: result.Sentiment.PositivePct,
		NeutralPct:  result.Sentiment.NeutralPct,
		NegativePct: result.Sentiment.NegativePct,
	}
	return event
}

// Handle processes req and publishes the resulting event to every
// publisher. All publishers are attempted; the joined failures are returned.
func (p *Processor) Handle(ctx context.Context, req models.IntelligenceRequestEvent) (models.IntelligenceResultEvent, error) {
	event := p.Process(ctx, req)

	var errs []error
	for _, pub := range p.publishers {
		if err := pub.PublishResult(ctx, event); err != nil {
			metrics.PublishTotal.WithLabelValues(pub.Name(), "error").Inc()
			slog.Error("[Processor] failed to publish intelligence result event",
				slog.String("publisher", pub.Name()),
				slog.String("question_id", req.QuestionID),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", pub.Name(), err))
			continue
		}
		metrics.PublishTotal.WithLabelValues(pub.Name(), "success").Inc()
	}

	if len(errs) > 0 {
		return event, fmt.Errorf("failed to publish result event: %w", errors.Join(errs...))
	}
	return event, nil
}

func (p *Processor) document(req models.IntelligenceRequestEvent, result analysis.Result) models.AnalysisDocument {
	answers := make([]models.AnalyzedAnswer, len(result.Answers))
	for i, a := range result.Answers {
		answers[i] = models.AnalyzedAnswer{
			Index:          i,
			AnswerText:     a.Text,
			SentimentScore: a.Score,
			SentimentLabel: string(a.Label),
		}
		if p.opts.VaderCrossCheck {
			score, label := sentiment.AnalyzeWithVADER(a.Text)
			answers[i].VaderScore = &score
			answers[i].VaderLabel = string(label)
		}
	}

	summaries := make([]models.ClusterSummary, len(result.Ideas))
	for i, idea := range result.Ideas {
		count := idea.Count
		summaries[i] = models.ClusterSummary{Summary: idea.Summary, Count: &count}
	}

	return models.AnalysisDocument{
		QuestionID:              req.QuestionID,
		QuestionText:            req.QuestionText,
		FormID:                  req.FormID,
		JobID:                   req.JobID,
		AnalysisHash:            req.AnalysisHash,
		Answers:                 answers,
		AggregateSentimentScore: result.Score,
		AggregateSentimentLabel: string(result.Label),
		ClusterSummaries:        summaries,
		ModelVersion:            p.opts.ModelVersion,
		Timestamp:               p.clock.Now().UTC(),
	}
}

func (p *Processor) failure(req models.IntelligenceRequestEvent, err error) models.IntelligenceResultEvent {
	msg := err.Error()
	event := p.event(req)
	event.AnalysisError = &msg
	return event
}

func (p *Processor) event(req models.IntelligenceRequestEvent) models.IntelligenceResultEvent {
	return models.IntelligenceResultEvent{
		JobID:          req.JobID,
		FormID:         req.FormID,
		SnapshotID:     req.SnapshotID,
		WindowKey:      req.WindowKey,
		QuestionID:     req.QuestionID,
		AnalysisHash:   req.AnalysisHash,
		TopIdeas:       []models.IdeaItem{},
		LastEnrichedAt: p.clock.Now().UTC().Format(time.RFC3339),
		ModelVersion:   p.opts.ModelVersion,
	}
}
