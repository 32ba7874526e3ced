// Package engine holds the pure filter and rank operations over the
// equity universe. Every operation loads a fresh snapshot, never
// mutates it, and reports failures inside its result envelope instead
// of returning an error.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/ScreenerGo/internal/logger"
	"github.com/dyike/ScreenerGo/internal/models"
	"github.com/dyike/ScreenerGo/internal/store"
)

// Sort keys accepted by the industry and sector filters.
const (
	SortByStars            = "Stars"
	SortByGlobalEvaluation = "Global Evaluation"
	SortByYTDPerformance   = "Year to date performance"
)

// Defaults applied when a caller leaves the knob unset.
const (
	DefaultMinStars    = 2
	DefaultLimit       = 10
	DefaultSearchLimit = 20
)

// evalScale orders the textual evaluations from worst to best. Values
// outside the scale rank as neutral.
var evalScale = []string{
	"very negative",
	"negative",
	"slightly negative",
	"neutral",
	"slightly positive",
	"positive",
	"very positive",
}

// EvaluationRank maps a textual evaluation to its position on the
// scale. Unknown or empty text ranks neutral (3).
func EvaluationRank(evaluation string) int {
	normalized := strings.ToLower(strings.TrimSpace(evaluation))
	for i, step := range evalScale {
		if step == normalized {
			return i
		}
	}
	return 3
}

// Engine runs screening operations against one record store.
type Engine struct {
	store *store.RecordStore
}

func New(st *store.RecordStore) *Engine {
	return &Engine{store: st}
}

// TopStocksByStars returns the stocks rated at least minStars, best
// rated first.
func (e *Engine) TopStocksByStars(minStars, limit int) (res TopStocksResult) {
	defer recoverInto(&res.Error, &res.Reason, "get_top_stocks_by_stars")
	res.Stocks = []StockSummary{}

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}

	filtered := make([]models.StockRecord, 0, len(records))
	for _, r := range records {
		if r.Stars >= minStars {
			filtered = append(filtered, r)
		}
	}

	for _, r := range topN(filtered, limit, starsKey) {
		res.Stocks = append(res.Stocks, summarize(r, false))
	}
	res.TotalFound = len(filtered)
	res.Returned = len(res.Stocks)
	res.FilterCriteria = fmt.Sprintf("Stars >= %d", minStars)
	return res
}

// FilterByIndustry returns the stocks whose industry contains
// industryName, sorted by sortBy. When nothing matches, the envelope
// carries the full list of industries so the caller can self-correct.
func (e *Engine) FilterByIndustry(industryName, sortBy string, limit int) (res IndustryResult) {
	defer recoverInto(&res.Error, &res.Reason, "filter_stocks_by_industry")
	res.Stocks = []StockSummary{}

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}

	filtered := filterContains(records, industryName, func(r models.StockRecord) string { return r.Industry })
	if len(filtered) == 0 {
		res.Error = fmt.Sprintf("No stocks found for industry: %s", industryName)
		res.Reason = models.ReasonNotFound
		res.AvailableIndustries = uniqueInOrder(records, func(r models.StockRecord) string { return r.Industry })
		return res
	}

	sortBy = normalizeSortBy(sortBy, SortByStars)
	for _, r := range topN(filtered, limit, sortKeyFor(sortBy)) {
		res.Stocks = append(res.Stocks, summarize(r, true))
	}
	res.Industry = industryName
	res.TotalInIndustry = len(filtered)
	res.Returned = len(res.Stocks)
	res.SortedBy = sortBy
	return res
}

// FilterBySector mirrors FilterByIndustry for the sector column. The
// default sort key differs because sectors are broad enough that the
// star rating alone is a poor discriminator.
func (e *Engine) FilterBySector(sectorName, sortBy string, limit int) (res SectorResult) {
	defer recoverInto(&res.Error, &res.Reason, "filter_stocks_by_sector")
	res.Stocks = []StockSummary{}

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}

	filtered := filterContains(records, sectorName, func(r models.StockRecord) string { return r.Sector })
	if len(filtered) == 0 {
		res.Error = fmt.Sprintf("No stocks found for sector: %s", sectorName)
		res.Reason = models.ReasonNotFound
		res.AvailableSectors = uniqueInOrder(records, func(r models.StockRecord) string { return r.Sector })
		return res
	}

	sortBy = normalizeSortBy(sortBy, SortByGlobalEvaluation)
	for _, r := range topN(filtered, limit, sortKeyFor(sortBy)) {
		res.Stocks = append(res.Stocks, summarize(r, false))
	}
	res.Sector = sectorName
	res.TotalInSector = len(filtered)
	res.Returned = len(res.Stocks)
	res.SortedBy = sortBy
	return res
}

// StockDetails returns the full grouped record for one ticker or ISIN.
// The identifier must match exactly.
func (e *Engine) StockDetails(tickerOrISIN string) (res StockDetailsResult) {
	defer recoverInto(&res.Error, &res.Reason, "get_stock_details")

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}

	for i := range records {
		r := &records[i]
		if !r.Matches(tickerOrISIN) {
			continue
		}
		res.Identifiers = &DetailIdentifiers{
			Ticker:   r.Ticker,
			ISIN:     r.ISIN,
			Name:     r.Name,
			Sector:   r.Sector,
			Industry: r.Industry,
			Market:   r.Market,
			Currency: r.Currency,
		}
		res.PricePerformance = &DetailPricePerformance{
			CurrentPrice:         r.Price,
			TargetPrice:          r.TargetPrice,
			YTDPerformance:       r.YTDPerformance,
			FourWeeksPerformance: r.FourWeeksPerf,
			ReferenceIndex:       r.ReferenceIndex,
		}
		res.ValuationMetrics = &DetailValuation{
			LongTermPE:      r.LongTermPE,
			BookValuePrice:  r.BookValuePrice,
			ValuationRating: r.ValuationRating,
			MarketCapBn:     r.MarketCapBn,
		}
		res.FinancialMetrics = &DetailFinancials{
			ReturnOnEquity:     r.ReturnOnEquity,
			EBIT:               r.EBIT,
			EquityOnAssets:     r.EquityOnAssets,
			CurrentRatio:       r.CurrentRatio,
			LongTermDebt:       r.LongTermDebt,
			TotalRevenueMio:    r.TotalRevenueMio,
			NetIncomeMio:       r.NetIncomeMio,
			RevenuesOnAssets:   r.RevenuesOnAssets,
			CashFlowOnRevenues: r.CashFlowOnRevenues,
		}
		res.GrowthTrends = &DetailGrowthTrends{
			LongTermGrowth:        r.LongTermGrowth,
			EarningsRevisionTrend: r.EarningsRevisionTrend,
			TechnicalTrend:        r.TechnicalTrend,
			Sensitivity:           r.Sensitivity,
		}
		res.Ratings = &DetailRatings{
			Stars:                    r.Stars,
			GlobalEvaluation:         r.GlobalEvaluation,
			IndustryGlobalEvaluation: r.IndustryGlobalEvaluation,
		}
		res.DividendInfo = &DetailDividend{ExpectedDividend: r.ExpectedDividend}
		return res
	}

	res.Error = fmt.Sprintf("Stock not found: %s", tickerOrISIN)
	res.Reason = models.ReasonNotFound
	return res
}

// CompareStocks looks up every identifier in stockIDs and returns the
// found ones in request order. Unknown identifiers land in NotFound
// without failing the whole comparison.
func (e *Engine) CompareStocks(stockIDs []string) (res ComparisonResult) {
	defer recoverInto(&res.Error, &res.Reason, "compare_stocks_performance")
	res.Comparison = []ComparisonEntry{}
	res.NotFound = []string{}

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}

	for _, id := range stockIDs {
		found := false
		for i := range records {
			r := &records[i]
			if !r.Matches(id) {
				continue
			}
			res.Comparison = append(res.Comparison, ComparisonEntry{
				Ticker:           r.Ticker,
				Name:             r.Name,
				Stars:            r.Stars,
				Price:            r.Price,
				MarketCapBn:      r.MarketCapBn,
				YTDPerformance:   r.YTDPerformance,
				FourWeeksPerf:    r.FourWeeksPerf,
				LongTermPE:       r.LongTermPE,
				ReturnOnEquity:   r.ReturnOnEquity,
				LongTermGrowth:   r.LongTermGrowth,
				GlobalEvaluation: r.GlobalEvaluation,
				ValuationRating:  r.ValuationRating,
				ExpectedDividend: r.ExpectedDividend,
			})
			found = true
			break
		}
		if !found {
			res.NotFound = append(res.NotFound, id)
		}
	}

	res.ComparedCount = len(res.Comparison)
	return res
}

// IndustryOverview aggregates one industry: averages, its three best
// rated stocks and the distribution of the textual ratings.
func (e *Engine) IndustryOverview(industryName string) (res IndustryOverviewResult) {
	defer recoverInto(&res.Error, &res.Reason, "get_industry_overview")

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}

	filtered := filterContains(records, industryName, func(r models.StockRecord) string { return r.Industry })
	if len(filtered) == 0 {
		res.Error = fmt.Sprintf("No stocks found for industry: %s", industryName)
		res.Reason = models.ReasonNotFound
		return res
	}

	res.IndustryName = industryName
	res.TotalStocks = len(filtered)
	res.AverageStars = meanOf(filtered, func(r models.StockRecord) *float64 {
		v := float64(r.Stars)
		return &v
	})
	res.AverageYTDPerformance = meanOf(filtered, func(r models.StockRecord) *float64 { return r.YTDPerformance })
	res.AverageMarketCapBn = meanOf(filtered, func(r models.StockRecord) *float64 { return r.MarketCapBn })
	res.AveragePERatio = meanOf(filtered, func(r models.StockRecord) *float64 { return r.LongTermPE })
	res.AverageExpectedDividend = meanOf(filtered, func(r models.StockRecord) *float64 { return r.ExpectedDividend })

	res.TopPerformers = []TopPerformer{}
	for _, r := range topN(filtered, 3, starsKey) {
		res.TopPerformers = append(res.TopPerformers, TopPerformer{
			Ticker: r.Ticker,
			Name:   r.Name,
			Stars:  r.Stars,
		})
	}

	res.EvaluationDistribution = countValues(filtered, func(r models.StockRecord) string { return r.GlobalEvaluation })
	res.ValuationDistribution = countValues(filtered, func(r models.StockRecord) string { return r.ValuationRating })
	return res
}

// SearchByCriteria applies every present criterion conjunctively and
// returns the best rated matches. A record with a nil metric fails any
// numeric constraint on that metric.
func (e *Engine) SearchByCriteria(criteria SearchCriteria) (res SearchResult) {
	defer recoverInto(&res.Error, &res.Reason, "search_stocks_by_criteria")
	res.Stocks = []StockSummary{}
	res.AppliedFilters = []string{}

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}

	filtered := records
	keep := func(desc string, pred func(r models.StockRecord) bool) {
		next := make([]models.StockRecord, 0, len(filtered))
		for _, r := range filtered {
			if pred(r) {
				next = append(next, r)
			}
		}
		filtered = next
		res.AppliedFilters = append(res.AppliedFilters, desc)
	}

	if criteria.MinStars != nil {
		min := *criteria.MinStars
		keep(fmt.Sprintf("Stars >= %d", min), func(r models.StockRecord) bool { return r.Stars >= min })
	}
	if criteria.MaxStars != nil {
		max := *criteria.MaxStars
		keep(fmt.Sprintf("Stars <= %d", max), func(r models.StockRecord) bool { return r.Stars <= max })
	}
	if criteria.MinYTDPerformance != nil {
		min := *criteria.MinYTDPerformance
		keep(fmt.Sprintf("YTD Performance >= %v", min), func(r models.StockRecord) bool {
			return r.YTDPerformance != nil && *r.YTDPerformance >= min
		})
	}
	if criteria.MaxPERatio != nil {
		max := *criteria.MaxPERatio
		keep(fmt.Sprintf("PE Ratio <= %v", max), func(r models.StockRecord) bool {
			return r.LongTermPE != nil && *r.LongTermPE <= max
		})
	}
	if criteria.ValuationRating != nil {
		want := *criteria.ValuationRating
		keep(fmt.Sprintf("Valuation Rating: %s", want), func(r models.StockRecord) bool {
			return containsFold(r.ValuationRating, want)
		})
	}
	if criteria.GlobalEvaluation != nil {
		want := *criteria.GlobalEvaluation
		keep(fmt.Sprintf("Global Evaluation: %s", want), func(r models.StockRecord) bool {
			return containsFold(r.GlobalEvaluation, want)
		})
	}
	if criteria.Sector != nil {
		want := *criteria.Sector
		keep(fmt.Sprintf("Sector: %s", want), func(r models.StockRecord) bool {
			return containsFold(r.Sector, want)
		})
	}
	if criteria.Industry != nil {
		want := *criteria.Industry
		keep(fmt.Sprintf("Industry: %s", want), func(r models.StockRecord) bool {
			return containsFold(r.Industry, want)
		})
	}

	limit := DefaultSearchLimit
	if criteria.Limit != nil {
		limit = *criteria.Limit
	}

	for _, r := range topN(filtered, limit, starsKey) {
		res.Stocks = append(res.Stocks, summarize(r, false))
	}
	res.TotalMatches = len(filtered)
	res.Returned = len(res.Stocks)
	return res
}

// AvailableIndustries lists every industry in first-appearance order.
func (e *Engine) AvailableIndustries() (res IndustriesResult) {
	defer recoverInto(&res.Error, &res.Reason, "get_available_industries")
	res.Industries = []string{}

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}
	res.Industries = uniqueInOrder(records, func(r models.StockRecord) string { return r.Industry })
	return res
}

// AvailableSectors lists every sector in first-appearance order.
func (e *Engine) AvailableSectors() (res SectorsResult) {
	defer recoverInto(&res.Error, &res.Reason, "get_available_sectors")
	res.Sectors = []string{}

	records, err := e.store.Load()
	if err != nil {
		res.Error = "No data available"
		res.Reason = models.ReasonDataUnavailable
		return res
	}
	res.Sectors = uniqueInOrder(records, func(r models.StockRecord) string { return r.Sector })
	return res
}

// recoverInto converts a panic inside an operation into an error
// envelope, so a single bad record can never take the dispatcher down.
func recoverInto(errText, reason *string, op string) {
	if r := recover(); r != nil {
		logger.Log.Errorf("panic in %s: %v", op, r)
		*errText = fmt.Sprintf("%v", r)
		*reason = models.ReasonInternal
	}
}

// sortKey extracts the ranking value for one record. ok=false means
// the record has no value on that axis and is excluded from ranking.
type sortKey func(r models.StockRecord) (float64, bool)

func starsKey(r models.StockRecord) (float64, bool) {
	return float64(r.Stars), true
}

func evalRankKey(r models.StockRecord) (float64, bool) {
	return float64(EvaluationRank(r.GlobalEvaluation)), true
}

func ytdKey(r models.StockRecord) (float64, bool) {
	if r.YTDPerformance == nil {
		return 0, false
	}
	return *r.YTDPerformance, true
}

func normalizeSortBy(sortBy, fallback string) string {
	switch sortBy {
	case SortByStars, SortByGlobalEvaluation, SortByYTDPerformance:
		return sortBy
	default:
		return fallback
	}
}

func sortKeyFor(sortBy string) sortKey {
	switch sortBy {
	case SortByGlobalEvaluation:
		return evalRankKey
	case SortByYTDPerformance:
		return ytdKey
	default:
		return starsKey
	}
}

// topN returns the n highest ranked records. The sort is stable, so
// ties keep their snapshot order, and records without a value on the
// ranking axis are excluded.
func topN(records []models.StockRecord, n int, key sortKey) []models.StockRecord {
	if n <= 0 {
		return nil
	}

	type ranked struct {
		rec models.StockRecord
		val float64
	}
	candidates := make([]ranked, 0, len(records))
	for _, r := range records {
		if v, ok := key(r); ok {
			candidates = append(candidates, ranked{rec: r, val: v})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].val > candidates[j].val
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]models.StockRecord, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[i].rec
	}
	return out
}

// summarize projects a record into its list form. Industry listings
// additionally carry the industry-level evaluation.
func summarize(r models.StockRecord, withIndustryEval bool) StockSummary {
	s := StockSummary{
		Ticker:           r.Ticker,
		ISIN:             r.ISIN,
		Name:             r.Name,
		Stars:            r.Stars,
		Sector:           r.Sector,
		Industry:         r.Industry,
		Price:            r.Price,
		MarketCapBn:      r.MarketCapBn,
		GlobalEvaluation: r.GlobalEvaluation,
		YTDPerformance:   r.YTDPerformance,
		ValuationRating:  r.ValuationRating,
	}
	if withIndustryEval {
		s.IndustryGlobalEvaluation = r.IndustryGlobalEvaluation
	}
	return s
}

func filterContains(records []models.StockRecord, substr string, field func(models.StockRecord) string) []models.StockRecord {
	out := make([]models.StockRecord, 0, len(records))
	for _, r := range records {
		if containsFold(field(r), substr) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// uniqueInOrder lists the distinct non-empty values of one column in
// first-appearance order.
func uniqueInOrder(records []models.StockRecord, field func(models.StockRecord) string) []string {
	seen := make(map[string]bool, len(records))
	out := []string{}
	for _, r := range records {
		v := field(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func countValues(records []models.StockRecord, field func(models.StockRecord) string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if v := field(r); v != "" {
			counts[v]++
		}
	}
	return counts
}

// meanOf averages the non-nil values of one metric with exact decimal
// arithmetic. It returns nil when no record reports the metric.
func meanOf(records []models.StockRecord, metric func(models.StockRecord) *float64) *float64 {
	values := make([]decimal.Decimal, 0, len(records))
	for _, r := range records {
		if v := metric(r); v != nil {
			values = append(values, decimal.NewFromFloat(*v))
		}
	}
	if len(values) == 0 {
		return nil
	}
	avg := decimal.Avg(values[0], values[1:]...).InexactFloat64()
	return &avg
}
