package db

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/spacesedan/ideaflow/internal/models"
)

// IDEA_STATS_LIMIT caps the number of rows returned by IdeaStats.
const IDEA_STATS_LIMIT = 20

// DynamoAPI is the subset of the DynamoDB client used by AnalysisStore.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// AnalysisStore keeps one analysis document per question.
type AnalysisStore struct {
	client DynamoAPI
	table  string
}

func NewAnalysisStore(client DynamoAPI, table string) *AnalysisStore {
	return &AnalysisStore{client: client, table: table}
}

// SaveAnalysis upserts doc keyed by its question id. Replaying the same
// request leaves a single document behind.
func (s *AnalysisStore) SaveAnalysis(ctx context.Context, doc models.AnalysisDocument) error {
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to marshal analysis %s: %w", doc.QuestionID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to store analysis %s: %w", doc.QuestionID, err)
	}

	slog.Info("[DynamoDB] Stored analysis",
		slog.String("question_id", doc.QuestionID),
		slog.Int("answers", len(doc.Answers)))
	return nil
}

// SentimentStats counts every stored answer by sentiment label.
func (s *AnalysisStore) SentimentStats(ctx context.Context) (models.SentimentStatsResponse, error) {
	var docs []models.AnalysisDocument
	if err := s.scan(ctx, "answers", &docs); err != nil {
		return models.SentimentStatsResponse{}, err
	}
	return SentimentStatsFrom(docs), nil
}

// IdeaStats groups stored cluster summaries by text and returns the most
// frequent IDEA_STATS_LIMIT of them.
func (s *AnalysisStore) IdeaStats(ctx context.Context) (models.IdeaStatsResponse, error) {
	var docs []models.AnalysisDocument
	if err := s.scan(ctx, "cluster_summaries", &docs); err != nil {
		return models.IdeaStatsResponse{}, err
	}
	return IdeaStatsFrom(docs, IDEA_STATS_LIMIT), nil
}

// Ping checks that the analyses table is reachable.
func (s *AnalysisStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] describe table %s: %w", s.table, err)
	}
	return nil
}

func (s *AnalysisStore) scan(ctx context.Context, projection string, out *[]models.AnalysisDocument) error {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		ProjectionExpression: aws.String(projection),
	}

	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("[DynamoDB] scan of %s failed: %w", s.table, err)
		}

		var docs []models.AnalysisDocument
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &docs); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal analysis page", slog.String("error", err.Error()))
			return fmt.Errorf("[DynamoDB] unmarshal analysis page: %w", err)
		}
		*out = append(*out, docs...)
	}
	return nil
}

// SentimentStatsFrom groups the answers of docs by label. Percentages are
// relative to the total answer count; no rows are returned when it is zero.
func SentimentStatsFrom(docs []models.AnalysisDocument) models.SentimentStatsResponse {
	counts := make(map[string]int64)
	var total int64
	for _, doc := range docs {
		for _, answer := range doc.Answers {
			counts[answer.SentimentLabel]++
			total++
		}
	}

	stats := make([]models.SentimentStat, 0, len(counts))
	if total > 0 {
		for label, count := range counts {
			stats = append(stats, models.SentimentStat{
				Sentiment:  label,
				Count:      count,
				Percentage: float64(count) / float64(total) * 100,
			})
		}
	}

	slices.SortFunc(stats, func(a, b models.SentimentStat) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Sentiment, b.Sentiment)
	})

	return models.SentimentStatsResponse{Stats: stats, TotalAnalyzed: total}
}

// IdeaStatsFrom sums cluster summary counts by summary text. Empty summaries
// are skipped and a missing count contributes 1.
func IdeaStatsFrom(docs []models.AnalysisDocument, limit int) models.IdeaStatsResponse {
	freq := make(map[string]int64)
	for _, doc := range docs {
		for _, summary := range doc.ClusterSummaries {
			if summary.Summary == "" {
				continue
			}
			n := int64(1)
			if summary.Count != nil {
				n = int64(*summary.Count)
			}
			freq[summary.Summary] += n
		}
	}

	ideas := make([]models.IdeaStat, 0, len(freq))
	for idea, n := range freq {
		ideas = append(ideas, models.IdeaStat{Idea: idea, Frequency: n})
	}

	slices.SortFunc(ideas, func(a, b models.IdeaStat) int {
		if c := cmp.Compare(b.Frequency, a.Frequency); c != 0 {
			return c
		}
		return cmp.Compare(a.Idea, b.Idea)
	})

	if limit > 0 && len(ideas) > limit {
		ideas = ideas[:limit]
	}

	return models.IdeaStatsResponse{Ideas: ideas, TotalIdeas: len(ideas)}
}

var _ DynamoAPI = (*dynamodb.Client)(nil)
