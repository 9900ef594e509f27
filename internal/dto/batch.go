package dto

import "time"

// TickerFailure captures why one ticker failed within a run. The list is
// persisted with the job log as a JSON array.
type TickerFailure struct {
	Ticker string `json:"ticker"`
	Market Market `json:"market"`
	Reason string `json:"reason"`
}

type BatchResult struct {
	Status       BatchStatus     `json:"status"`
	JobDate      time.Time       `json:"job_date"`
	TotalStocks  int             `json:"total_stocks"`
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Duration     time.Duration   `json:"duration"`
	Failures     []TickerFailure `json:"failures,omitempty"`
}
