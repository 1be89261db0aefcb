package models

// Requests for gap analytics HTTP endpoints. Defined in domain for consistency and reuse.

type GapsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type ActiveGapsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	MaxAge int    `query:"max_age" json:"max_age" validate:"gte=0"`
}

type StrongGapsRequest struct {
	Symbol      string  `query:"symbol" json:"symbol" validate:"required"`
	MinStrength float64 `query:"min_strength" json:"min_strength" default:"0.6" validate:"gte=0,lte=1"`
}

type NearPriceRequest struct {
	Symbol       string  `query:"symbol" json:"symbol" validate:"required"`
	Price        float64 `query:"price" json:"price" validate:"required,gt=0"`
	TolerancePct float64 `query:"tolerance_pct" json:"tolerance_pct" default:"0.5" validate:"gt=0,lte=50"`
}

type SignalRequest struct {
	Symbol string  `query:"symbol" json:"symbol" validate:"required"`
	Price  float64 `query:"price" json:"price" validate:"required,gt=0"`
}

type StatisticsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

// CandlesRequest queries stored candle history. From/To accept RFC3339
// or unix seconds and are parsed by the handler.
type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=0,lte=10000"`
}
