package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid intelligence request")

// IntelligenceRequestEvent is one work item: a question and its raw answers.
type IntelligenceRequestEvent struct {
	JobID        string   `json:"jobId"`
	FormID       string   `json:"formId"`
	SnapshotID   string   `json:"snapshotId"`
	WindowKey    string   `json:"windowKey"`
	QuestionID   string   `json:"questionId"`
	QuestionText string   `json:"questionText"`
	Answers      []string `json:"answers"`
	AnalysisHash string   `json:"analysisHash"`
	CreatedAt    string   `json:"createdAt"`
}

// Validate checks the required fields. Answers may be empty but not absent.
func (r IntelligenceRequestEvent) Validate() error {
	var missing []string
	if strings.TrimSpace(r.JobID) == "" {
		missing = append(missing, "jobId")
	}
	if strings.TrimSpace(r.QuestionID) == "" {
		missing = append(missing, "questionId")
	}
	if r.Answers == nil {
		missing = append(missing, "answers")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// DedupeKey identifies a request for at-least-once delivery.
func (r IntelligenceRequestEvent) DedupeKey() string {
	if r.AnalysisHash != "" {
		return r.QuestionID + ":" + r.AnalysisHash
	}
	return r.QuestionID + ":" + r.JobID
}

type IdeaItem struct {
	Idea  string `json:"idea"`
	Count int    `json:"count"`
}

type SentimentPayload struct {
	PositivePct float64 `json:"positivePct"`
	NeutralPct  float64 `json:"neutralPct"`
	NegativePct float64 `json:"negativePct"`
}

// IntelligenceResultEvent is published for every processed request, whether
// the analysis succeeded or not.
type IntelligenceResultEvent struct {
	JobID          string            `json:"jobId"`
	FormID         string            `json:"formId"`
	SnapshotID     string            `json:"snapshotId"`
	WindowKey      string            `json:"windowKey"`
	QuestionID     string            `json:"questionId"`
	AnalysisHash   string            `json:"analysisHash"`
	Success        bool              `json:"success"`
	TopIdeas       []IdeaItem        `json:"topIdeas"`
	Sentiment      *SentimentPayload `json:"sentiment"`
	AnalysisError  *string           `json:"analysisError"`
	LastEnrichedAt string            `json:"lastEnrichedAt"`
	ModelVersion   string            `json:"modelVersion"`
}
