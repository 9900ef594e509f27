package dto

type Market string

const (
	MarketJP Market = "JP"
	MarketUS Market = "US"
)

func (m Market) Valid() bool {
	return m == MarketJP || m == MarketUS
}

type Recommendation string

const (
	RecommendationBuy  Recommendation = "Buy"
	RecommendationSell Recommendation = "Sell"
	RecommendationHold Recommendation = "Hold"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendationBuy, RecommendationSell, RecommendationHold:
		return true
	}
	return false
}

type BatchStatus string

const (
	BatchStatusSuccess        BatchStatus = "success"
	BatchStatusPartialSuccess BatchStatus = "partial_success"
	BatchStatusFailure        BatchStatus = "failure"
)

type ActionType string

const (
	ActionTypeSell      ActionType = "SELL"
	ActionTypeHoldAlert ActionType = "HOLD_ALERT"
)
