package usecase

import (
	"context"
	"fmt"
	"time"

	"GapSight/internal/domain/models"
	domrepo "GapSight/internal/domain/repository"
	"GapSight/pkg/util"
)

// maxQueryWindow caps how much history a single request can scan.
const maxQueryWindow = 90 * 24 * time.Hour

// CandlesUseCase serves historical candle queries from the store.
type CandlesUseCase struct {
	store domrepo.CandleStore
}

func NewCandlesUseCase(store domrepo.CandleStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetCandlesResult struct {
	Symbol  string          `json:"symbol"`
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Count   int             `json:"count"`
	Candles []models.Candle `json:"candles"`
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}
	p.From, p.To = util.ClampRange(p.From, p.To, maxQueryWindow)

	candles, err := uc.store.Query(ctx, p.Symbol, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}

	return &GetCandlesResult{
		Symbol:  p.Symbol,
		From:    p.From,
		To:      p.To,
		Count:   len(candles),
		Candles: candles,
	}, nil
}
