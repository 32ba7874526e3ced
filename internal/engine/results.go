package engine

// Result envelopes returned by the engine operations. Failures are
// expressed through the Error/Reason pair on the envelope itself; the
// engine never lets an error escape to the dispatcher.

// StockSummary is the list-form projection of a record, used by every
// screening operation.
type StockSummary struct {
	Ticker                   string   `json:"ticker"`
	ISIN                     string   `json:"isin"`
	Name                     string   `json:"name"`
	Stars                    int      `json:"stars"`
	Sector                   string   `json:"sector"`
	Industry                 string   `json:"industry"`
	Price                    *float64 `json:"price"`
	MarketCapBn              *float64 `json:"market_cap_bn"`
	GlobalEvaluation         string   `json:"global_evaluation"`
	IndustryGlobalEvaluation string   `json:"industry_global_evaluation,omitempty"`
	YTDPerformance           *float64 `json:"ytd_performance"`
	ValuationRating          string   `json:"valuation_rating"`
}

type TopStocksResult struct {
	Error          string         `json:"error,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Stocks         []StockSummary `json:"stocks"`
	TotalFound     int            `json:"total_found"`
	Returned       int            `json:"returned"`
	FilterCriteria string         `json:"filter_criteria,omitempty"`
}

type IndustryResult struct {
	Error               string         `json:"error,omitempty"`
	Reason              string         `json:"reason,omitempty"`
	AvailableIndustries []string       `json:"available_industries,omitempty"`
	Stocks              []StockSummary `json:"stocks"`
	Industry            string         `json:"industry,omitempty"`
	TotalInIndustry     int            `json:"total_in_industry,omitempty"`
	Returned            int            `json:"returned"`
	SortedBy            string         `json:"sorted_by,omitempty"`
}

type SectorResult struct {
	Error            string         `json:"error,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	AvailableSectors []string       `json:"available_sectors,omitempty"`
	Stocks           []StockSummary `json:"stocks"`
	Sector           string         `json:"sector,omitempty"`
	TotalInSector    int            `json:"total_in_sector,omitempty"`
	Returned         int            `json:"returned"`
	SortedBy         string         `json:"sorted_by,omitempty"`
}

// StockDetailsResult groups the full record into the sub-sections the
// assistant presents to the user. The grouping is part of the tool
// contract, not a presentation detail.
type StockDetailsResult struct {
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`

	Identifiers      *DetailIdentifiers      `json:"identifiers,omitempty"`
	PricePerformance *DetailPricePerformance `json:"price_performance,omitempty"`
	ValuationMetrics *DetailValuation        `json:"valuation_metrics,omitempty"`
	FinancialMetrics *DetailFinancials       `json:"financial_metrics,omitempty"`
	GrowthTrends     *DetailGrowthTrends     `json:"growth_trends,omitempty"`
	Ratings          *DetailRatings          `json:"ratings,omitempty"`
	DividendInfo     *DetailDividend         `json:"dividend_info,omitempty"`
}

type DetailIdentifiers struct {
	Ticker   string `json:"ticker"`
	ISIN     string `json:"isin"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Market   string `json:"market"`
	Currency string `json:"currency"`
}

type DetailPricePerformance struct {
	CurrentPrice         *float64 `json:"current_price"`
	TargetPrice          *float64 `json:"target_price"`
	YTDPerformance       *float64 `json:"ytd_performance"`
	FourWeeksPerformance *float64 `json:"four_weeks_performance"`
	ReferenceIndex       string   `json:"reference_index"`
}

type DetailValuation struct {
	LongTermPE      *float64 `json:"long_term_pe"`
	BookValuePrice  *float64 `json:"book_value_price"`
	ValuationRating string   `json:"valuation_rating"`
	MarketCapBn     *float64 `json:"market_cap_bn"`
}

type DetailFinancials struct {
	ReturnOnEquity     *float64 `json:"return_on_equity"`
	EBIT               *float64 `json:"ebit"`
	EquityOnAssets     *float64 `json:"equity_on_assets"`
	CurrentRatio       *float64 `json:"current_ratio"`
	LongTermDebt       *float64 `json:"long_term_debt"`
	TotalRevenueMio    *float64 `json:"total_revenue_mio"`
	NetIncomeMio       *float64 `json:"net_income_mio"`
	RevenuesOnAssets   *float64 `json:"revenues_on_assets"`
	CashFlowOnRevenues *float64 `json:"cash_flow_on_revenues"`
}

type DetailGrowthTrends struct {
	LongTermGrowth        *float64 `json:"long_term_growth"`
	EarningsRevisionTrend string   `json:"earnings_revision_trend"`
	TechnicalTrend        string   `json:"technical_trend"`
	Sensitivity           string   `json:"sensitivity"`
}

type DetailRatings struct {
	Stars                    int    `json:"stars"`
	GlobalEvaluation         string `json:"global_evaluation"`
	IndustryGlobalEvaluation string `json:"industry_global_evaluation"`
}

type DetailDividend struct {
	ExpectedDividend *float64 `json:"expected_dividend"`
}

type ComparisonEntry struct {
	Ticker           string   `json:"ticker"`
	Name             string   `json:"name"`
	Stars            int      `json:"stars"`
	Price            *float64 `json:"price"`
	MarketCapBn      *float64 `json:"market_cap_bn"`
	YTDPerformance   *float64 `json:"ytd_performance"`
	FourWeeksPerf    *float64 `json:"four_weeks_performance"`
	LongTermPE       *float64 `json:"long_term_pe"`
	ReturnOnEquity   *float64 `json:"return_on_equity"`
	LongTermGrowth   *float64 `json:"long_term_growth"`
	GlobalEvaluation string   `json:"global_evaluation"`
	ValuationRating  string   `json:"valuation_rating"`
	ExpectedDividend *float64 `json:"expected_dividend"`
}

type ComparisonResult struct {
	Error         string            `json:"error,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Comparison    []ComparisonEntry `json:"comparison"`
	NotFound      []string          `json:"not_found"`
	ComparedCount int               `json:"compared_count"`
}

type TopPerformer struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Stars  int    `json:"stars"`
}

// IndustryOverviewResult aggregates one industry. Averages over
// all-null columns stay nil instead of faulting.
type IndustryOverviewResult struct {
	Error                   string         `json:"error,omitempty"`
	Reason                  string         `json:"reason,omitempty"`
	IndustryName            string         `json:"industry_name,omitempty"`
	TotalStocks             int            `json:"total_stocks,omitempty"`
	AverageStars            *float64       `json:"average_stars,omitempty"`
	AverageYTDPerformance   *float64       `json:"average_ytd_performance,omitempty"`
	AverageMarketCapBn      *float64       `json:"average_market_cap_bn,omitempty"`
	AveragePERatio          *float64       `json:"average_pe_ratio,omitempty"`
	AverageExpectedDividend *float64       `json:"average_expected_dividend,omitempty"`
	TopPerformers           []TopPerformer `json:"top_performers,omitempty"`
	EvaluationDistribution  map[string]int `json:"evaluation_distribution,omitempty"`
	ValuationDistribution   map[string]int `json:"valuation_distribution,omitempty"`
}

// SearchCriteria is the multi-key screening request. Absent keys
// impose no constraint.
type SearchCriteria struct {
	MinStars          *int     `json:"min_stars,omitempty"`
	MaxStars          *int     `json:"max_stars,omitempty"`
	MinYTDPerformance *float64 `json:"min_ytd_performance,omitempty"`
	MaxPERatio        *float64 `json:"max_pe_ratio,omitempty"`
	ValuationRating   *string  `json:"valuation_rating,omitempty"`
	GlobalEvaluation  *string  `json:"global_evaluation,omitempty"`
	Sector            *string  `json:"sector,omitempty"`
	Industry          *string  `json:"industry,omitempty"`
	Limit             *int     `json:"limit,omitempty"`
}

type SearchResult struct {
	Error          string         `json:"error,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Stocks         []StockSummary `json:"stocks"`
	TotalMatches   int            `json:"total_matches"`
	Returned       int            `json:"returned"`
	AppliedFilters []string       `json:"applied_filters"`
}

type IndustriesResult struct {
	Error      string   `json:"error,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Industries []string `json:"industries"`
}

type SectorsResult struct {
	Error   string   `json:"error,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Sectors []string `json:"sectors"`
}
