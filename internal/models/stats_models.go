package models

type SentimentStat struct {
	Sentiment  string  `json:"sentiment"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SentimentStatsResponse struct {
	Stats         []SentimentStat `json:"stats"`
	TotalAnalyzed int64           `json:"total_analyzed"`
}

type IdeaStat struct {
	Idea      string `json:"idea"`
	Frequency int64  `json:"frequency"`
}

type IdeaStatsResponse struct {
	Ideas      []IdeaStat `json:"ideas"`
	TotalIdeas int        `json:"total_ideas"`
}
