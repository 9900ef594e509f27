package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"stock-analyzer/config"
	"stock-analyzer/internal/dto"
	"stock-analyzer/pkg/httpclient"
	"stock-analyzer/pkg/logger"
	"stock-analyzer/pkg/ratelimit"
	"stock-analyzer/pkg/retry"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type AIRepository interface {
	AnalyzeStock(ctx context.Context, input dto.StockAnalysisInput) (*dto.AIAnalysisOutcome, error)
}

// geminiAIRepository generates stock recommendations with the Google Gemini API.
type geminiAIRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		httpClient:     httpclient.New(log, cfg.Gemini.BaseURL, cfg.Gemini.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// AnalyzeStock renders the prompt, calls the completion API, and parses one
// validated recommendation out of the response text. Network, parse, and
// validation failures all go through the same bounded retry loop; when the
// attempts are exhausted the error surfaces as-is. There is no fallback
// recommendation.
func (r *geminiAIRepository) AnalyzeStock(ctx context.Context, input dto.StockAnalysisInput) (*dto.AIAnalysisOutcome, error) {
	prompt := r.promptAnalyzeStock(input)

	retryCfg := retry.DefaultConfig()
	if r.cfg.Batch.MaxRetryAttempts > 0 {
		retryCfg.MaxAttempts = r.cfg.Batch.MaxRetryAttempts
	}
	if r.cfg.Batch.RetryBaseDelay > 0 {
		retryCfg.BaseDelay = r.cfg.Batch.RetryBaseDelay
	}

	outcome, err := retry.DoValue(ctx, retryCfg, func(ctx context.Context) (*dto.AIAnalysisOutcome, error) {
		apiResponse, err := r.sendRequest(ctx, prompt)
		if err != nil {
			r.logger.WarnContext(ctx, "Gemini request failed",
				logger.StringField("ticker", input.Ticker),
				logger.ErrorField(err))
			return nil, err
		}

		result, raw, err := r.parseResponse(apiResponse)
		if err != nil {
			r.logger.WarnContext(ctx, "Gemini response rejected",
				logger.StringField("ticker", input.Ticker),
				logger.ErrorField(err))
			return nil, err
		}

		return &dto.AIAnalysisOutcome{
			Result:      *result,
			Prompt:      prompt,
			RawResponse: raw,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ai analysis for %s failed: %w", input.Ticker, err)
	}

	return outcome, nil
}

func (r *geminiAIRepository) sendRequest(ctx context.Context, prompt string) (*dto.GeminiAPIResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.BaseModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)
	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for gemini token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	payload := dto.GeminiAPIRequest{
		SystemInstruction: &dto.Content{
			Parts: []dto.Part{{Text: analystSystemInstruction}},
		},
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
		GenerationConfig: &dto.GenerationConfig{
			Temperature:     r.cfg.Gemini.Temperature,
			MaxOutputTokens: r.cfg.Gemini.MaxOutputTokens,
		},
	}

	apiResponse := dto.GeminiAPIResponse{}
	apiURL := fmt.Sprintf("/%s:generateContent?key=%s", r.cfg.Gemini.BaseModel, r.cfg.Gemini.APIKey)

	resp, err := r.httpClient.Post(ctx, apiURL, payload, nil, &apiResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to gemini: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "failed to get data from gemini", logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("gemini api returned status: %d", resp.StatusCode)
	}

	return &apiResponse, nil
}

func (r *geminiAIRepository) parseResponse(response *dto.GeminiAPIResponse) (*dto.AIAnalysisResult, json.RawMessage, error) {
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, nil, fmt.Errorf("invalid response from Gemini API: no content found")
	}

	text := response.Candidates[0].Content.Parts[0].Text
	jsonString, err := extractJSONObject(text)
	if err != nil {
		return nil, nil, err
	}

	var payload aiAnalysisPayload
	if err := json.Unmarshal([]byte(jsonString), &payload); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
	}

	result, err := payload.validate()
	if err != nil {
		return nil, nil, err
	}

	return result, json.RawMessage(jsonString), nil
}

// extractJSONObject returns the first balanced {...} span found in the text.
// Models routinely wrap the object in prose or ```json fences; the scan
// ignores braces inside string literals so rationale text cannot truncate it.
func extractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in response")
}

// aiAnalysisPayload is the parse target. Pointer fields distinguish an
// omitted field from a zero value, so validation fails instead of defaulting.
type aiAnalysisPayload struct {
	Recommendation  *string  `json:"recommendation"`
	ConfidenceScore *float64 `json:"confidence_score"`
	ReasonShort     *string  `json:"reason_short"`
	ReasonDetailed  *string  `json:"reason_detailed"`
}

func (p *aiAnalysisPayload) validate() (*dto.AIAnalysisResult, error) {
	if p.Recommendation == nil || !dto.Recommendation(*p.Recommendation).Valid() {
		return nil, fmt.Errorf("invalid recommendation: %v", stringOrMissing(p.Recommendation))
	}
	if p.ConfidenceScore == nil {
		return nil, fmt.Errorf("confidence_score is missing")
	}
	if *p.ConfidenceScore < 0 || *p.ConfidenceScore > 100 {
		return nil, fmt.Errorf("confidence_score out of range: %v", *p.ConfidenceScore)
	}
	if p.ReasonShort == nil || strings.TrimSpace(*p.ReasonShort) == "" {
		return nil, fmt.Errorf("reason_short is empty")
	}
	if p.ReasonDetailed == nil || strings.TrimSpace(*p.ReasonDetailed) == "" {
		return nil, fmt.Errorf("reason_detailed is empty")
	}

	return &dto.AIAnalysisResult{
		Recommendation:  dto.Recommendation(*p.Recommendation),
		ConfidenceScore: int(math.Round(*p.ConfidenceScore)),
		ReasonShort:     *p.ReasonShort,
		ReasonDetailed:  *p.ReasonDetailed,
	}, nil
}

func stringOrMissing(s *string) string {
	if s == nil {
		return "<missing>"
	}
	return *s
}
