package models

import "time"

// QueryRecord is one resolved question as kept in the history log.
type QueryRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Question   string    `json:"question"`
	Method     string    `json:"method"`
	Confidence float64   `json:"confidence"`
	SQL        string    `json:"sql"`
	TemplateID string    `json:"template_id,omitempty"`
	Cached     bool      `json:"cached"`
	LatencyMS  int       `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type Feedback struct {
	ID            int       `json:"id"`
	QueryID       string    `json:"query_id"`
	Helpful       bool      `json:"helpful"`
	IssueCategory string    `json:"issue_category,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EvaluationRun summarizes one pass of the evaluation dataset.
type EvaluationRun struct {
	ID             int       `json:"id"`
	TotalCases     int       `json:"total_cases"`
	Passed         int       `json:"passed"`
	Accuracy       float64   `json:"accuracy"`
	MeanConfidence float64   `json:"mean_confidence"`
	CreatedAt      time.Time `json:"created_at"`
}
