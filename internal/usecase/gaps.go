package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"GapSight/internal/domain/models"
	icache "GapSight/internal/service/cache"
	xlogger "GapSight/pkg/logger"
)

// CacheTTLs configures the read-side response cache.
type CacheTTLs struct {
	Gaps       time.Duration
	Signal     time.Duration
	Statistics time.Duration
}

// GapsUseCase serves API queries over manager state with a short-TTL
// response cache in front.
type GapsUseCase struct {
	mgr    *EngineManager
	cache  icache.BytesCache
	logger *xlogger.Logger
	ttls   CacheTTLs
}

func NewGapsUseCase(mgr *EngineManager, logger *xlogger.Logger) *GapsUseCase {
	return &GapsUseCase{
		mgr:    mgr,
		logger: logger,
		ttls:   CacheTTLs{Gaps: 2 * time.Second, Signal: 2 * time.Second, Statistics: 5 * time.Second},
	}
}

// SetCache enables response caching.
func (uc *GapsUseCase) SetCache(c icache.BytesCache) { uc.cache = c }

// SetTTLs overrides the default cache TTLs.
func (uc *GapsUseCase) SetTTLs(t CacheTTLs) { uc.ttls = t }

// GapListResult is the payload for gap list queries.
type GapListResult struct {
	Symbol string                `json:"symbol"`
	Count  int                   `json:"count"`
	Gaps   []models.FairValueGap `json:"gaps"`
}

func (uc *GapsUseCase) Gaps(ctx context.Context, symbol string) (*GapListResult, error) {
	key := "gaps:" + symbol
	if res, ok := cachedResult[GapListResult](uc, key); ok {
		return res, nil
	}
	gaps, err := uc.mgr.Gaps(symbol)
	if err != nil {
		return nil, err
	}
	res := &GapListResult{Symbol: symbol, Count: len(gaps), Gaps: gaps}
	uc.store(key, res, uc.ttls.Gaps)
	return res, nil
}

func (uc *GapsUseCase) ActiveGaps(ctx context.Context, symbol string, maxAge int) (*GapListResult, error) {
	key := "gaps:active:" + symbol + ":" + strconv.Itoa(maxAge)
	if res, ok := cachedResult[GapListResult](uc, key); ok {
		return res, nil
	}
	gaps, err := uc.mgr.ActiveGaps(symbol, maxAge)
	if err != nil {
		return nil, err
	}
	res := &GapListResult{Symbol: symbol, Count: len(gaps), Gaps: gaps}
	uc.store(key, res, uc.ttls.Gaps)
	return res, nil
}

func (uc *GapsUseCase) StrongGaps(ctx context.Context, symbol string, minStrength float64) (*GapListResult, error) {
	key := fmt.Sprintf("gaps:strong:%s:%.4f", symbol, minStrength)
	if res, ok := cachedResult[GapListResult](uc, key); ok {
		return res, nil
	}
	gaps, err := uc.mgr.StrongGaps(symbol, minStrength)
	if err != nil {
		return nil, err
	}
	res := &GapListResult{Symbol: symbol, Count: len(gaps), Gaps: gaps}
	uc.store(key, res, uc.ttls.Gaps)
	return res, nil
}

func (uc *GapsUseCase) NearPrice(ctx context.Context, symbol string, price, tolerancePct float64) (*GapListResult, error) {
	key := fmt.Sprintf("gaps:near:%s:%.8f:%.4f", symbol, price, tolerancePct)
	if res, ok := cachedResult[GapListResult](uc, key); ok {
		return res, nil
	}
	gaps, err := uc.mgr.NearPrice(symbol, price, tolerancePct)
	if err != nil {
		return nil, err
	}
	res := &GapListResult{Symbol: symbol, Count: len(gaps), Gaps: gaps}
	uc.store(key, res, uc.ttls.Gaps)
	return res, nil
}

func (uc *GapsUseCase) Signal(ctx context.Context, symbol string, price float64) (*models.GapSignal, error) {
	key := fmt.Sprintf("signal:%s:%.8f", symbol, price)
	if res, ok := cachedResult[models.GapSignal](uc, key); ok {
		return res, nil
	}
	sig, err := uc.mgr.Signal(symbol, price)
	if err != nil {
		return nil, err
	}
	uc.store(key, &sig, uc.ttls.Signal)
	return &sig, nil
}

func (uc *GapsUseCase) Statistics(ctx context.Context, symbol string) (*models.GapStatistics, error) {
	key := "stats:" + symbol
	if res, ok := cachedResult[models.GapStatistics](uc, key); ok {
		return res, nil
	}
	stats, err := uc.mgr.Statistics(symbol)
	if err != nil {
		return nil, err
	}
	uc.store(key, &stats, uc.ttls.Statistics)
	return &stats, nil
}

func (uc *GapsUseCase) Export(ctx context.Context, symbol string) (*EngineSnapshot, error) {
	// exports bypass the cache, they are diagnostic
	return uc.mgr.Snapshot(symbol)
}

func (uc *GapsUseCase) store(key string, v interface{}, ttl time.Duration) {
	if uc.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := uc.cache.SetBytes(key, b, ttl); err != nil && uc.logger != nil {
		uc.logger.Warn("cache set failed", xlogger.String("key", key), xlogger.Error(err))
	}
}

func cachedResult[T any](uc *GapsUseCase, key string) (*T, bool) {
	if uc.cache == nil {
		return nil, false
	}
	b, ok, err := uc.cache.GetBytes(key)
	if err != nil {
		if uc.logger != nil {
			uc.logger.Warn("cache get failed", xlogger.String("key", key), xlogger.Error(err))
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}
