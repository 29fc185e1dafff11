package report

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"shopledger/backend/internal/cache"
	"shopledger/backend/internal/domain"
)

// Engine builds range reports and memoizes them in the report cache. Keys
// embed the current cache generation, so Invalidate makes every cached
// report unreachable at once.
type Engine struct {
	cache    cache.ReportCache
	cacheTTL time.Duration
}

func NewEngine(cacheStore cache.ReportCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopReportCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &Engine{
		cache:    cacheStore,
		cacheTTL: cacheTTL,
	}
}

// Cached returns a previously built report for the range, if one exists for
// the current generation. Cache errors count as misses.
func (e *Engine) Cached(ctx context.Context, from string, to string) (*domain.RangeReport, bool) {
	report, ok, err := e.cache.Get(ctx, e.cacheKey(ctx, from, to))
	if err != nil || !ok {
		return nil, false
	}
	return report, true
}

// Build assembles the full range report from the fetched records and stores
// it under the current generation.
func (e *Engine) Build(ctx context.Context, from string, to string, records []domain.DailyShopRecord) domain.RangeReport {
	charts := make(map[string]domain.ChartData, len(ChartFields))
	for _, field := range ChartFields {
		charts[field] = BuildChartData(records, field)
	}

	shopTotals := make(map[string]float64, len(domain.ShopNames))
	for _, shop := range domain.ShopNames {
		shopTotals[shop] = 0
	}
	grandTotal := 0.0
	for _, rec := range records {
		shopTotals[rec.ShopName] += rec.TotalSale
		grandTotal += rec.TotalSale
	}

	if records == nil {
		records = []domain.DailyShopRecord{}
	}

	report := domain.RangeReport{
		From:              from,
		To:                to,
		Records:           records,
		Charts:            charts,
		ShopTotals:        shopTotals,
		GrandTotal:        grandTotal,
		GrandTotalDisplay: FormatIndian(grandTotal),
	}

	_ = e.cache.Set(ctx, e.cacheKey(ctx, from, to), &report, e.cacheTTL)
	return report
}

// Invalidate bumps the cache generation after a record submission.
func (e *Engine) Invalidate(ctx context.Context) {
	_ = e.cache.BumpGeneration(ctx)
}

func (e *Engine) cacheKey(ctx context.Context, from string, to string) string {
	generation, err := e.cache.Generation(ctx)
	if err != nil {
		generation = -1
	}
	hash := sha1.Sum([]byte(fmt.Sprintf("%s|%s|g:%d", from, to, generation)))
	return "shopledger:report:range:" + hex.EncodeToString(hash[:])
}
