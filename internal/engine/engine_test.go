package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyike/ScreenerGo/internal/models"
	"github.com/dyike/ScreenerGo/internal/store"
)

var fixtureHeader = strings.Join([]string{
	"Ticker", "ISIN", "Name", "Stars", "Sector", "Industry",
	"Price", "Market", "Currency", "Target Price",
	"Year to date performance", "4 weeks performance", "Reference index",
	"Long Term PE", "Book Value / Price", "Valuation rating",
	"Martket Capitalization (in $bn)", "Return On equity",
	"Earnings Before Interest & Taxes", "Equity on Assets",
	"Current Ratio", "Long Term Debt", "Total Revenue (in Mio)",
	"Net Income (in Mio)", "Revenues on Assets", "Cash Flow on Revenues",
	"Long Term Growth", "Earnings revision trend", "Technical trend",
	"Sensitivity", "Global Evaluation", "Industry Global Evaluation",
	"Expected dividend",
}, ";")

// fixtureStock covers the columns the engine operations rank and
// aggregate on. Everything else stays empty.
type fixtureStock struct {
	ticker     string
	isin       string
	name       string
	stars      string
	sector     string
	industry   string
	price      string
	ytd        string
	pe         string
	valuation  string
	marketCap  string
	globalEval string
	dividend   string
}

func (f fixtureStock) row() string {
	cells := make([]string, 33)
	cells[0] = f.ticker
	cells[1] = f.isin
	cells[2] = f.name
	cells[3] = f.stars
	cells[4] = f.sector
	cells[5] = f.industry
	cells[6] = f.price
	cells[10] = f.ytd
	cells[13] = f.pe
	cells[15] = f.valuation
	cells[16] = f.marketCap
	cells[30] = f.globalEval
	cells[32] = f.dividend
	return strings.Join(cells, ";")
}

func newTestEngine(t *testing.T, stocks ...fixtureStock) *Engine {
	t.Helper()
	rows := make([]string, 0, len(stocks)+1)
	rows = append(rows, fixtureHeader)
	for _, s := range stocks {
		rows = append(rows, s.row())
	}
	path := filepath.Join(t.TempDir(), "stocks.csv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return New(store.New(path))
}

func universe() []fixtureStock {
	return []fixtureStock{
		{ticker: "ALFA", isin: "US0000000001", name: "Alfa Corp", stars: "4", sector: "Technology", industry: "Software", ytd: "18.5", pe: "24", globalEval: "very positive", valuation: "undervalued", marketCap: "120", dividend: "1.2"},
		{ticker: "BRVO", isin: "US0000000002", name: "Bravo Inc", stars: "1", sector: "Technology", industry: "Software", ytd: "-4.2", pe: "55", globalEval: "negative", valuation: "overvalued", marketCap: "8"},
		{ticker: "CHLY", isin: "US0000000003", name: "Charlie Ltd", stars: "4", sector: "Energy", industry: "Oil & Gas", ytd: "9.9", pe: "12", globalEval: "positive", valuation: "undervalued", marketCap: "60", dividend: "3.4"},
		{ticker: "DLTA", isin: "US0000000004", name: "Delta PLC", stars: "3", sector: "Technology", industry: "Software", globalEval: "meh", valuation: "fairly valued", marketCap: "30"},
		{ticker: "ECHO", isin: "US0000000005", name: "Echo AG", stars: "2", sector: "Finance", industry: "Banks", ytd: "2.3", pe: "9", globalEval: "slightly positive", valuation: "undervalued", marketCap: "45", dividend: "5.0"},
	}
}

func TestTopStocksByStars(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.TopStocksByStars(2, 3)
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.TotalFound != 4 {
		t.Fatalf("expected 4 matches, got %d", res.TotalFound)
	}
	if res.Returned != 3 || len(res.Stocks) != 3 {
		t.Fatalf("expected 3 returned, got %d", res.Returned)
	}
	if res.FilterCriteria != "Stars >= 2" {
		t.Fatalf("unexpected filter criteria %q", res.FilterCriteria)
	}

	// Ties on stars keep snapshot order: ALFA before CHLY.
	got := []string{res.Stocks[0].Ticker, res.Stocks[1].Ticker, res.Stocks[2].Ticker}
	want := []string{"ALFA", "CHLY", "DLTA"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestTopStocksByStarsLimitZero(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.TopStocksByStars(0, 0)
	if len(res.Stocks) != 0 {
		t.Fatalf("expected no stocks for zero limit, got %d", len(res.Stocks))
	}
	if res.TotalFound != 5 {
		t.Fatalf("expected total_found 5, got %d", res.TotalFound)
	}
}

func TestFilterByIndustryNotFound(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.FilterByIndustry("Railways", SortByStars, 10)
	if res.Error == "" || res.Reason != models.ReasonNotFound {
		t.Fatalf("expected not_found envelope, got %+v", res)
	}
	if len(res.Stocks) != 0 {
		t.Fatalf("expected no stocks, got %d", len(res.Stocks))
	}

	want := []string{"Software", "Oil & Gas", "Banks"}
	if len(res.AvailableIndustries) != len(want) {
		t.Fatalf("expected industries %v, got %v", want, res.AvailableIndustries)
	}
	for i := range want {
		if res.AvailableIndustries[i] != want[i] {
			t.Fatalf("expected industries %v, got %v", want, res.AvailableIndustries)
		}
	}
}

func TestFilterByIndustryMatchIsCaseInsensitiveSubstring(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.FilterByIndustry("soft", "", 10)
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.TotalInIndustry != 3 {
		t.Fatalf("expected 3 software stocks, got %d", res.TotalInIndustry)
	}
	if res.SortedBy != SortByStars {
		t.Fatalf("expected default sort by stars, got %q", res.SortedBy)
	}
	if res.Stocks[0].Ticker == "" {
		t.Fatal("expected populated summaries")
	}
}

func TestFilterByIndustryYTDSortSkipsMissingValues(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	// DLTA has no YTD value and must not appear in a YTD ranking.
	res := eng.FilterByIndustry("Software", SortByYTDPerformance, 10)
	if res.TotalInIndustry != 3 {
		t.Fatalf("expected 3 in industry, got %d", res.TotalInIndustry)
	}
	if res.Returned != 2 {
		t.Fatalf("expected 2 ranked stocks, got %d", res.Returned)
	}
	if res.Stocks[0].Ticker != "ALFA" || res.Stocks[1].Ticker != "BRVO" {
		t.Fatalf("unexpected YTD order: %+v", res.Stocks)
	}
}

func TestFilterBySectorDefaultEvaluationSort(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.FilterBySector("Technology", "", 10)
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.SortedBy != SortByGlobalEvaluation {
		t.Fatalf("expected evaluation sort, got %q", res.SortedBy)
	}

	// "meh" is off the scale and ranks neutral, between very positive
	// and negative.
	got := []string{res.Stocks[0].Ticker, res.Stocks[1].Ticker, res.Stocks[2].Ticker}
	want := []string{"ALFA", "DLTA", "BRVO"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestFilterBySectorNotFoundListsSectors(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.FilterBySector("Aerospace", "", 10)
	if res.Reason != models.ReasonNotFound {
		t.Fatalf("expected not_found, got %+v", res)
	}
	want := []string{"Technology", "Energy", "Finance"}
	if len(res.AvailableSectors) != len(want) {
		t.Fatalf("expected sectors %v, got %v", want, res.AvailableSectors)
	}
}

func TestStockDetails(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.StockDetails("CHLY")
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.Identifiers == nil || res.Identifiers.Name != "Charlie Ltd" {
		t.Fatalf("unexpected identifiers: %+v", res.Identifiers)
	}
	if res.Ratings == nil || res.Ratings.Stars != 4 {
		t.Fatalf("unexpected ratings: %+v", res.Ratings)
	}
	if res.DividendInfo == nil || res.DividendInfo.ExpectedDividend == nil || *res.DividendInfo.ExpectedDividend != 3.4 {
		t.Fatalf("unexpected dividend info: %+v", res.DividendInfo)
	}

	// ISIN lookup resolves to the same record.
	byISIN := eng.StockDetails("US0000000003")
	if byISIN.Identifiers == nil || byISIN.Identifiers.Ticker != "CHLY" {
		t.Fatalf("expected ISIN lookup to find CHLY, got %+v", byISIN.Identifiers)
	}
}

func TestStockDetailsNotFound(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.StockDetails("ZZZZ")
	if res.Reason != models.ReasonNotFound {
		t.Fatalf("expected not_found, got %+v", res)
	}
	if res.Error != "Stock not found: ZZZZ" {
		t.Fatalf("unexpected error text %q", res.Error)
	}
	if res.Identifiers != nil {
		t.Fatal("expected no identifier section on a miss")
	}
}

func TestCompareStocksPartialSuccess(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.CompareStocks([]string{"ECHO", "NOPE", "ALFA"})
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.ComparedCount != 2 {
		t.Fatalf("expected 2 compared, got %d", res.ComparedCount)
	}
	// Entries keep request order.
	if res.Comparison[0].Ticker != "ECHO" || res.Comparison[1].Ticker != "ALFA" {
		t.Fatalf("unexpected comparison order: %+v", res.Comparison)
	}
	if len(res.NotFound) != 1 || res.NotFound[0] != "NOPE" {
		t.Fatalf("unexpected not_found: %v", res.NotFound)
	}
}

func TestIndustryOverview(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	res := eng.IndustryOverview("Software")
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.TotalStocks != 3 {
		t.Fatalf("expected 3 stocks, got %d", res.TotalStocks)
	}
	// Stars 4, 1, 3 average to 8/3.
	if res.AverageStars == nil || *res.AverageStars < 2.66 || *res.AverageStars > 2.67 {
		t.Fatalf("unexpected average stars: %v", res.AverageStars)
	}
	// DLTA reports no YTD; the average covers the other two.
	if res.AverageYTDPerformance == nil || *res.AverageYTDPerformance != 7.15 {
		t.Fatalf("unexpected average ytd: %v", res.AverageYTDPerformance)
	}
	if len(res.TopPerformers) != 3 || res.TopPerformers[0].Ticker != "ALFA" {
		t.Fatalf("unexpected top performers: %+v", res.TopPerformers)
	}
	if res.EvaluationDistribution["very positive"] != 1 || res.EvaluationDistribution["meh"] != 1 {
		t.Fatalf("unexpected evaluation distribution: %v", res.EvaluationDistribution)
	}
	if res.ValuationDistribution["undervalued"] != 1 {
		t.Fatalf("unexpected valuation distribution: %v", res.ValuationDistribution)
	}
}

func TestIndustryOverviewAllMissingMetricAveragesNil(t *testing.T) {
	eng := newTestEngine(t,
		fixtureStock{ticker: "ONE", isin: "X1", name: "One", stars: "2", sector: "S", industry: "Ghost"},
		fixtureStock{ticker: "TWO", isin: "X2", name: "Two", stars: "3", sector: "S", industry: "Ghost"},
	)

	res := eng.IndustryOverview("Ghost")
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.AverageYTDPerformance != nil {
		t.Fatalf("expected nil ytd average, got %v", *res.AverageYTDPerformance)
	}
	if res.AverageStars == nil || *res.AverageStars != 2.5 {
		t.Fatalf("unexpected average stars: %v", res.AverageStars)
	}
}

func TestSearchByCriteria(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	minStars := 2
	maxPE := 30.0
	res := eng.SearchByCriteria(SearchCriteria{
		MinStars:   &minStars,
		MaxPERatio: &maxPE,
	})
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	// DLTA has stars 3 but no PE, so the PE constraint drops it.
	if res.TotalMatches != 3 {
		t.Fatalf("expected 3 matches, got %d", res.TotalMatches)
	}
	if len(res.AppliedFilters) != 2 ||
		res.AppliedFilters[0] != "Stars >= 2" ||
		res.AppliedFilters[1] != "PE Ratio <= 30" {
		t.Fatalf("unexpected applied filters: %v", res.AppliedFilters)
	}
	if res.Stocks[0].Ticker != "ALFA" {
		t.Fatalf("expected best rated first, got %+v", res.Stocks[0])
	}
}

func TestSearchByCriteriaTighteningNeverGrowsResults(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	loose := eng.SearchByCriteria(SearchCriteria{})
	minStars := 3
	tight := eng.SearchByCriteria(SearchCriteria{MinStars: &minStars})

	if tight.TotalMatches > loose.TotalMatches {
		t.Fatalf("tightening grew matches: %d > %d", tight.TotalMatches, loose.TotalMatches)
	}
	if len(loose.AppliedFilters) != 0 {
		t.Fatalf("expected no filters applied, got %v", loose.AppliedFilters)
	}
}

func TestSearchByCriteriaLimit(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	limit := 2
	res := eng.SearchByCriteria(SearchCriteria{Limit: &limit})
	if res.Returned != 2 || res.TotalMatches != 5 {
		t.Fatalf("expected 2 of 5, got %d of %d", res.Returned, res.TotalMatches)
	}
}

func TestAvailableListings(t *testing.T) {
	eng := newTestEngine(t, universe()...)

	industries := eng.AvailableIndustries()
	if len(industries.Industries) != 3 || industries.Industries[0] != "Software" {
		t.Fatalf("unexpected industries: %v", industries.Industries)
	}

	sectors := eng.AvailableSectors()
	if len(sectors.Sectors) != 3 || sectors.Sectors[0] != "Technology" {
		t.Fatalf("unexpected sectors: %v", sectors.Sectors)
	}
}

func TestOperationsReportDataUnavailable(t *testing.T) {
	eng := New(store.New(filepath.Join(t.TempDir(), "absent.csv")))

	if res := eng.TopStocksByStars(2, 10); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("top stocks: expected data_unavailable, got %+v", res)
	}
	if res := eng.FilterByIndustry("Software", "", 10); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("industry filter: expected data_unavailable, got %+v", res)
	}
	if res := eng.StockDetails("ALFA"); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("details: expected data_unavailable, got %+v", res)
	}
	if res := eng.CompareStocks([]string{"ALFA"}); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("compare: expected data_unavailable, got %+v", res)
	}
	if res := eng.IndustryOverview("Software"); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("overview: expected data_unavailable, got %+v", res)
	}
	if res := eng.SearchByCriteria(SearchCriteria{}); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("search: expected data_unavailable, got %+v", res)
	}
	if res := eng.AvailableIndustries(); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("industries: expected data_unavailable, got %+v", res)
	}
	if res := eng.AvailableSectors(); res.Reason != models.ReasonDataUnavailable {
		t.Fatalf("sectors: expected data_unavailable, got %+v", res)
	}
}

func TestEvaluationRank(t *testing.T) {
	cases := map[string]int{
		"very negative": 0,
		"negative":      1,
		"neutral":       3,
		"Very Positive": 6,
		"meh":           3,
		"":              3,
	}
	for in, want := range cases {
		if got := EvaluationRank(in); got != want {
			t.Errorf("EvaluationRank(%q) = %d, want %d", in, got, want)
		}
	}
}
