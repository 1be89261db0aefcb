package usecase

import (
	"errors"
	"fmt"

	"GapSight/internal/domain/models"
	"GapSight/internal/fvg"
)

// ErrUnknownSymbol is returned for queries against untracked symbols.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Read-side queries. Each takes the manager lock so results are
// consistent with concurrent ingestion.

func (m *EngineManager) Gaps(symbol string) ([]models.FairValueGap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return e.Gaps(), nil
}

func (m *EngineManager) ActiveGaps(symbol string, maxAge int) ([]models.FairValueGap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return e.ActiveGaps(maxAge), nil
}

func (m *EngineManager) StrongGaps(symbol string, minStrength float64) ([]models.FairValueGap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return e.StrongGaps(minStrength), nil
}

func (m *EngineManager) NearPrice(symbol string, price, tolerancePct float64) ([]models.FairValueGap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return e.NearPrice(price, tolerancePct), nil
}

func (m *EngineManager) Signal(symbol string, price float64) (models.GapSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[symbol]
	if !ok {
		return models.GapSignal{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	sig := e.Signal(price)
	sig.Symbol = symbol
	return sig, nil
}

func (m *EngineManager) Statistics(symbol string) (models.GapStatistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[symbol]
	if !ok {
		return models.GapStatistics{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return e.Statistics(), nil
}

// Snapshot exports the full engine view for a symbol.
func (m *EngineManager) Snapshot(symbol string) (*EngineSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return &EngineSnapshot{
		Symbol:      symbol,
		CandleCount: e.CandleCount(),
		LastClose:   e.LastClose(),
		Config:      e.Config(),
		Gaps:        e.Export(),
		Statistics:  e.Statistics(),
	}, nil
}

// EngineSnapshot is the export payload for one symbol.
type EngineSnapshot struct {
	Symbol      string                `json:"symbol"`
	CandleCount int                   `json:"candle_count"`
	LastClose   float64               `json:"last_close"`
	Config      fvg.Config            `json:"config"`
	Gaps        []models.FairValueGap `json:"gaps"`
	Statistics  models.GapStatistics  `json:"statistics"`
}
