package models

import "time"

// AnalysisDocument is the stored form of one question's analysis. There is
// at most one document per question; newer analyses replace older ones.
type AnalysisDocument struct {
	QuestionID              string           `json:"question_id" dynamodbav:"question_id"`
	QuestionText            string           `json:"question_text" dynamodbav:"question_text"`
	FormID                  string           `json:"form_id,omitempty" dynamodbav:"form_id,omitempty"`
	JobID                   string           `json:"job_id,omitempty" dynamodbav:"job_id,omitempty"`
	AnalysisHash            string           `json:"analysis_hash,omitempty" dynamodbav:"analysis_hash,omitempty"`
	Answers                 []AnalyzedAnswer `json:"answers" dynamodbav:"answers"`
	AggregateSentimentScore float64          `json:"aggregate_sentiment_score" dynamodbav:"aggregate_sentiment_score"`
	AggregateSentimentLabel string           `json:"aggregate_sentiment_label" dynamodbav:"aggregate_sentiment_label"`
	ClusterSummaries        []ClusterSummary `json:"cluster_summaries" dynamodbav:"cluster_summaries"`
	ModelVersion            string           `json:"model_version" dynamodbav:"model_version"`
	Timestamp               time.Time        `json:"timestamp" dynamodbav:"timestamp,unixtime"`
}

type AnalyzedAnswer struct {
	Index          int     `json:"index" dynamodbav:"index"`
	AnswerText     string  `json:"answer_text" dynamodbav:"answer_text"`
	SentimentScore float64 `json:"sentiment_score" dynamodbav:"sentiment_score"`
	SentimentLabel string  `json:"sentiment_label" dynamodbav:"sentiment_label"`

	// Present only when the VADER cross-check is enabled.
	VaderScore *float64 `json:"vader_score,omitempty" dynamodbav:"vader_score,omitempty"`
	VaderLabel string   `json:"vader_label,omitempty" dynamodbav:"vader_label,omitempty"`
}

type ClusterSummary struct {
	Summary string `json:"summary" dynamodbav:"summary"`
	// Count is nil on documents written before counts were stored.
	Count *int `json:"count,omitempty" dynamodbav:"count,omitempty"`
}
