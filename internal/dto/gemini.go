package dto

import "encoding/json"

type GeminiAPIRequest struct {
	SystemInstruction *Content          `json:"system_instruction,omitempty"`
	Contents          []Content         `json:"contents"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type GeminiAPIResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is a candidate response from the Gemini API.
type Candidate struct {
	Content Content `json:"content"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

// StockAnalysisInput is everything the prompt template embeds for one ticker.
// Nil ratio pointers render as "N/A".
type StockAnalysisInput struct {
	Ticker        string       `json:"ticker"`
	Name          string       `json:"name"`
	Market        Market       `json:"market"`
	Sector        string       `json:"sector"`
	CurrentPrice  float64      `json:"current_price"`
	PERatio       *float64     `json:"pe_ratio"`
	PBRatio       *float64     `json:"pb_ratio"`
	ROE           *float64     `json:"roe"`
	DividendYield *float64     `json:"dividend_yield"`
	PriceHistory  []StockOHLCV `json:"price_history"`
}

// AIAnalysisResult is the JSON object the model is instructed to return.
type AIAnalysisResult struct {
	Recommendation  Recommendation `json:"recommendation"`
	ConfidenceScore int            `json:"confidence_score"`
	ReasonShort     string         `json:"reason_short"`
	ReasonDetailed  string         `json:"reason_detailed"`
}

// AIAnalysisOutcome pairs a validated result with the prompt that produced it
// and the raw model payload, both stored with the Analysis row.
type AIAnalysisOutcome struct {
	Result      AIAnalysisResult `json:"result"`
	Prompt      string           `json:"prompt"`
	RawResponse json.RawMessage  `json:"raw_response"`
}
