// Package store loads the equity universe snapshot from the
// TheScreener CSV export. Every Load produces an independent snapshot;
// nothing is cached between calls, so the backing file can be swapped
// while the service runs.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/dyike/ScreenerGo/internal/logger"
	"github.com/dyike/ScreenerGo/internal/models"
)

// ErrDataUnavailable marks every failure to produce a snapshot:
// missing path, unreadable file, undecodable content, or a header
// without the required columns. Callers get an empty table alongside
// it and must not treat the condition as fatal.
var ErrDataUnavailable = errors.New("stock data unavailable")

// Column headers as they appear in the export, including its
// misspelling of "Martket Capitalization".
const (
	colTicker             = "Ticker"
	colISIN               = "ISIN"
	colName               = "Name"
	colStars              = "Stars"
	colSector             = "Sector"
	colIndustry           = "Industry"
	colPrice              = "Price"
	colMarket             = "Market"
	colCurrency           = "Currency"
	colTargetPrice        = "Target Price"
	colYTDPerformance     = "Year to date performance"
	colFourWeeksPerf      = "4 weeks performance"
	colReferenceIndex     = "Reference index"
	colLongTermPE         = "Long Term PE"
	colBookValuePrice     = "Book Value / Price"
	colValuationRating    = "Valuation rating"
	colMarketCapBn        = "Martket Capitalization (in $bn)"
	colReturnOnEquity     = "Return On equity"
	colEBIT               = "Earnings Before Interest & Taxes"
	colEquityOnAssets     = "Equity on Assets"
	colCurrentRatio       = "Current Ratio"
	colLongTermDebt       = "Long Term Debt"
	colTotalRevenueMio    = "Total Revenue (in Mio)"
	colNetIncomeMio       = "Net Income (in Mio)"
	colRevenuesOnAssets   = "Revenues on Assets"
	colCashFlowOnRevenues = "Cash Flow on Revenues"
	colLongTermGrowth     = "Long Term Growth"
	colEarningsRevision   = "Earnings revision trend"
	colTechnicalTrend     = "Technical trend"
	colSensitivity        = "Sensitivity"
	colGlobalEvaluation   = "Global Evaluation"
	colIndustryGlobalEval = "Industry Global Evaluation"
	colExpectedDividend   = "Expected dividend"
)

// requiredColumns must be present in the header for the snapshot to be
// considered well-formed.
var requiredColumns = []string{
	colTicker, colISIN, colName, colStars, colSector, colIndustry,
}

// RecordStore reads snapshots of the equity universe from one CSV file.
type RecordStore struct {
	path string
}

func New(csvPath string) *RecordStore {
	return &RecordStore{path: csvPath}
}

// Load reads a fresh snapshot. On failure it returns an empty table
// together with an error wrapping ErrDataUnavailable so callers can
// distinguish "no data" from a fault of their own.
func (s *RecordStore) Load() ([]models.StockRecord, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, fmt.Errorf("%w: dataset path not configured", ErrDataUnavailable)
	}

	file, err := os.Open(s.path)
	if err != nil {
		logger.Log.Warnf("stock CSV not readable at %s: %v", s.path, err)
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer file.Close()

	// The export is ISO-8859-1 encoded and semicolon separated.
	reader := csv.NewReader(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		logger.Log.Warnf("stock CSV decode failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: empty file", ErrDataUnavailable)
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]models.StockRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if rec, ok := parseRow(row, index); ok {
			records = append(records, rec)
		}
	}

	logger.Log.Debugf("loaded %d stocks from %s", len(records), s.path)
	return records, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataUnavailable, col)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (models.StockRecord, bool) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := models.StockRecord{
		Ticker:   cell(colTicker),
		ISIN:     cell(colISIN),
		Name:     cell(colName),
		Sector:   cell(colSector),
		Industry: cell(colIndustry),
		Market:   cell(colMarket),
		Currency: cell(colCurrency),

		ReferenceIndex:  cell(colReferenceIndex),
		ValuationRating: cell(colValuationRating),

		EarningsRevisionTrend:    cell(colEarningsRevision),
		TechnicalTrend:           cell(colTechnicalTrend),
		Sensitivity:              cell(colSensitivity),
		GlobalEvaluation:         cell(colGlobalEvaluation),
		IndustryGlobalEvaluation: cell(colIndustryGlobalEval),
	}

	// Rows without an identifier are noise in the export; skip them.
	if rec.Ticker == "" && rec.ISIN == "" {
		return rec, false
	}

	rec.Stars = parseInt(cell(colStars))

	rec.Price = parseFloat(cell(colPrice))
	rec.TargetPrice = parseFloat(cell(colTargetPrice))
	rec.YTDPerformance = parseFloat(cell(colYTDPerformance))
	rec.FourWeeksPerf = parseFloat(cell(colFourWeeksPerf))
	rec.LongTermPE = parseFloat(cell(colLongTermPE))
	rec.BookValuePrice = parseFloat(cell(colBookValuePrice))
	rec.MarketCapBn = parseFloat(cell(colMarketCapBn))
	rec.ReturnOnEquity = parseFloat(cell(colReturnOnEquity))
	rec.EBIT = parseFloat(cell(colEBIT))
	rec.EquityOnAssets = parseFloat(cell(colEquityOnAssets))
	rec.CurrentRatio = parseFloat(cell(colCurrentRatio))
	rec.LongTermDebt = parseFloat(cell(colLongTermDebt))
	rec.TotalRevenueMio = parseFloat(cell(colTotalRevenueMio))
	rec.NetIncomeMio = parseFloat(cell(colNetIncomeMio))
	rec.RevenuesOnAssets = parseFloat(cell(colRevenuesOnAssets))
	rec.CashFlowOnRevenues = parseFloat(cell(colCashFlowOnRevenues))
	rec.LongTermGrowth = parseFloat(cell(colLongTermGrowth))
	rec.ExpectedDividend = parseFloat(cell(colExpectedDividend))

	return rec, true
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// parseFloat tolerates the decimal comma found in some locales of the
// export. Empty and non-numeric cells become nil.
func parseFloat(s string) *float64 {
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		s = strings.ReplaceAll(s, ",", ".")
		v, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
	}
	return &v
}
