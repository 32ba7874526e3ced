package models

// StockRecord is one row of the equity universe snapshot. Quantitative
// metrics are pointers because the source export leaves many cells
// empty; nil means "not reported".
type StockRecord struct {
	Ticker   string `json:"ticker"`
	ISIN     string `json:"isin"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Market   string `json:"market"`
	Currency string `json:"currency"`

	Stars int `json:"stars"`

	Price              *float64 `json:"price"`
	TargetPrice        *float64 `json:"target_price"`
	YTDPerformance     *float64 `json:"ytd_performance"`
	FourWeeksPerf      *float64 `json:"four_weeks_performance"`
	ReferenceIndex     string   `json:"reference_index"`
	LongTermPE         *float64 `json:"long_term_pe"`
	BookValuePrice     *float64 `json:"book_value_price"`
	ValuationRating    string   `json:"valuation_rating"`
	MarketCapBn        *float64 `json:"market_cap_bn"`
	ReturnOnEquity     *float64 `json:"return_on_equity"`
	EBIT               *float64 `json:"ebit"`
	EquityOnAssets     *float64 `json:"equity_on_assets"`
	CurrentRatio       *float64 `json:"current_ratio"`
	LongTermDebt       *float64 `json:"long_term_debt"`
	TotalRevenueMio    *float64 `json:"total_revenue_mio"`
	NetIncomeMio       *float64 `json:"net_income_mio"`
	RevenuesOnAssets   *float64 `json:"revenues_on_assets"`
	CashFlowOnRevenues *float64 `json:"cash_flow_on_revenues"`
	LongTermGrowth     *float64 `json:"long_term_growth"`
	ExpectedDividend   *float64 `json:"expected_dividend"`

	EarningsRevisionTrend    string `json:"earnings_revision_trend"`
	TechnicalTrend           string `json:"technical_trend"`
	Sensitivity              string `json:"sensitivity"`
	GlobalEvaluation         string `json:"global_evaluation"`
	IndustryGlobalEvaluation string `json:"industry_global_evaluation"`
}

// Matches reports whether id equals the record's ticker or ISIN exactly.
func (r *StockRecord) Matches(id string) bool {
	return r.Ticker == id || r.ISIN == id
}
