package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/piquette/finance-go/quote"

	"github.com/dyike/ScreenerGo/internal/docintel"
	"github.com/dyike/ScreenerGo/internal/engine"
)

// Screening bounds declared to the model and enforced on dispatch.
const (
	minStarsFloor = 0
	minStarsCeil  = 4
	limitFloor    = 1
	limitCeil     = 50
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// TopStocksInput uses pointers so an absent field can fall back to its
// default without being confused with an explicit zero.
type TopStocksInput struct {
	MinStars *int `json:"min_stars"`
	Limit    *int `json:"limit"`
}

func NewTopStocksTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_top_stocks_by_stars",
			Desc: "Get top-performing stocks filtered by minimum star rating. Stars range from 0-4.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"min_stars": {
					Type:     "integer",
					Desc:     "Minimum star rating (0-4), default 2",
					Required: false,
				},
				"limit": {
					Type:     "integer",
					Desc:     "Maximum number of stocks to return (1-50), default 10",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input TopStocksInput) (*engine.TopStocksResult, error) {
			minStars := clamp(intOrDefault(input.MinStars, engine.DefaultMinStars), minStarsFloor, minStarsCeil)
			limit := clamp(intOrDefault(input.Limit, engine.DefaultLimit), limitFloor, limitCeil)
			res := eng.TopStocksByStars(minStars, limit)
			return &res, nil
		},
	)
}

type IndustryFilterInput struct {
	IndustryName string `json:"industry_name"`
	SortBy       string `json:"sort_by"`
	Limit        *int   `json:"limit"`
}

func NewIndustryFilterTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "filter_stocks_by_industry",
			Desc: "Filter stocks by specific industry and sort by various criteria.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"industry_name": {
					Type:     "string",
					Desc:     "Name of the industry to filter by (e.g., 'Technology', 'Financial Services', 'Health Care')",
					Required: true,
				},
				"sort_by": {
					Type:     "string",
					Desc:     "Column to sort results by",
					Enum:     []string{engine.SortByStars, engine.SortByGlobalEvaluation, engine.SortByYTDPerformance},
					Required: false,
				},
				"limit": {
					Type:     "integer",
					Desc:     "Maximum number of stocks to return (1-50), default 10",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input IndustryFilterInput) (*engine.IndustryResult, error) {
			if input.IndustryName == "" {
				return nil, fmt.Errorf("industry_name parameter is required")
			}
			limit := clamp(intOrDefault(input.Limit, engine.DefaultLimit), limitFloor, limitCeil)
			res := eng.FilterByIndustry(input.IndustryName, input.SortBy, limit)
			return &res, nil
		},
	)
}

type SectorFilterInput struct {
	SectorName string `json:"sector_name"`
	SortBy     string `json:"sort_by"`
	Limit      *int   `json:"limit"`
}

func NewSectorFilterTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "filter_stocks_by_sector",
			Desc: "Filter stocks by specific sector and sort by various criteria.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sector_name": {
					Type:     "string",
					Desc:     "Name of the sector to filter by (e.g., 'Speciality Finance', 'Technology', 'Basic Resources')",
					Required: true,
				},
				"sort_by": {
					Type:     "string",
					Desc:     "Column to sort results by",
					Enum:     []string{engine.SortByStars, engine.SortByGlobalEvaluation, engine.SortByYTDPerformance},
					Required: false,
				},
				"limit": {
					Type:     "integer",
					Desc:     "Maximum number of stocks to return (1-50), default 10",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input SectorFilterInput) (*engine.SectorResult, error) {
			if input.SectorName == "" {
				return nil, fmt.Errorf("sector_name parameter is required")
			}
			limit := clamp(intOrDefault(input.Limit, engine.DefaultLimit), limitFloor, limitCeil)
			res := eng.FilterBySector(input.SectorName, input.SortBy, limit)
			return &res, nil
		},
	)
}

type StockDetailsInput struct {
	TickerOrISIN string `json:"ticker_or_isin"`
}

func NewStockDetailsTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_stock_details",
			Desc: "Get detailed information for a specific stock by ticker symbol or ISIN.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker_or_isin": {
					Type:     "string",
					Desc:     "Stock ticker symbol (e.g., 'AAPL', 'III') or ISIN code",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input StockDetailsInput) (*engine.StockDetailsResult, error) {
			if input.TickerOrISIN == "" {
				return nil, fmt.Errorf("ticker_or_isin parameter is required")
			}
			res := eng.StockDetails(input.TickerOrISIN)
			return &res, nil
		},
	)
}

type CompareStocksInput struct {
	StockList []string `json:"stock_list"`
}

func NewCompareStocksTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "compare_stocks_performance",
			Desc: "Compare performance metrics of multiple stocks side by side.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"stock_list": {
					Type:     "array",
					Desc:     "List of stock ticker symbols or ISINs to compare (2-10 entries)",
					ElemInfo: &schema.ParameterInfo{Type: "string"},
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input CompareStocksInput) (*engine.ComparisonResult, error) {
			if len(input.StockList) == 0 {
				return nil, fmt.Errorf("stock_list parameter is required")
			}
			res := eng.CompareStocks(input.StockList)
			return &res, nil
		},
	)
}

type IndustryOverviewInput struct {
	IndustryName string `json:"industry_name"`
}

func NewIndustryOverviewTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_industry_overview",
			Desc: "Get statistical overview and insights for a specific industry including averages, top performers, and distributions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"industry_name": {
					Type:     "string",
					Desc:     "Name of the industry to analyze",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input IndustryOverviewInput) (*engine.IndustryOverviewResult, error) {
			if input.IndustryName == "" {
				return nil, fmt.Errorf("industry_name parameter is required")
			}
			res := eng.IndustryOverview(input.IndustryName)
			return &res, nil
		},
	)
}

// SearchStocksInput wraps the criteria in a single object argument, so
// the model can pass exactly the keys it wants to constrain.
type SearchStocksInput struct {
	CriteriaDict engine.SearchCriteria `json:"criteria_dict"`
}

func NewSearchStocksTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "search_stocks_by_criteria",
			Desc: "Search stocks using multiple filtering criteria for advanced stock screening.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"criteria_dict": {
					Type:     "object",
					Desc:     "Dictionary containing search criteria",
					Required: true,
					SubParams: map[string]*schema.ParameterInfo{
						"min_stars": {
							Type: "integer",
							Desc: "Minimum star rating (0-4)",
						},
						"max_stars": {
							Type: "integer",
							Desc: "Maximum star rating (0-4)",
						},
						"min_ytd_performance": {
							Type: "number",
							Desc: "Minimum year-to-date performance as decimal (e.g., 0.1 for 10%)",
						},
						"max_pe_ratio": {
							Type: "number",
							Desc: "Maximum P/E ratio",
						},
						"valuation_rating": {
							Type: "string",
							Desc: "Valuation rating filter (e.g., 'undervalued', 'overvalued')",
						},
						"global_evaluation": {
							Type: "string",
							Desc: "Global evaluation filter (e.g., 'positive', 'negative', 'neutral')",
						},
						"sector": {
							Type: "string",
							Desc: "Sector filter",
						},
						"industry": {
							Type: "string",
							Desc: "Industry filter",
						},
						"limit": {
							Type: "integer",
							Desc: "Maximum number of results (1-100), default 20",
						},
					},
				},
			}),
		},
		func(ctx context.Context, input SearchStocksInput) (*engine.SearchResult, error) {
			criteria := input.CriteriaDict
			if criteria.Limit != nil {
				limit := clamp(*criteria.Limit, 1, 100)
				criteria.Limit = &limit
			}
			res := eng.SearchByCriteria(criteria)
			return &res, nil
		},
	)
}

type emptyInput struct{}

func NewAvailableIndustriesTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name:        "get_available_industries",
			Desc:        "Get list of all available industries in the dataset for filtering purposes.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, input emptyInput) (*engine.IndustriesResult, error) {
			res := eng.AvailableIndustries()
			return &res, nil
		},
	)
}

func NewAvailableSectorsTool(eng *engine.Engine) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name:        "get_available_sectors",
			Desc:        "Get list of all available sectors in the dataset for filtering purposes.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, input emptyInput) (*engine.SectorsResult, error) {
			res := eng.AvailableSectors()
			return &res, nil
		},
	)
}

type LiveQuoteInput struct {
	Symbol string `json:"symbol"`
}

// LiveQuoteOutput carries the delayed market quote for one symbol.
type LiveQuoteOutput struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	PreviousClose float64 `json:"previous_close"`
	Currency      string  `json:"currency"`
	MarketState   string  `json:"market_state"`
}

// NewLiveQuoteTool fetches a current market quote. It is only
// registered when online tools are enabled, the snapshot itself stays
// the single source of truth for screening.
func NewLiveQuoteTool() tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_live_quote",
			Desc: "Get the current market quote for a stock symbol. Use only when the user asks about the live price.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input LiveQuoteInput) (*LiveQuoteOutput, error) {
			if input.Symbol == "" {
				return nil, fmt.Errorf("symbol parameter is required")
			}
			q, err := quote.Get(input.Symbol)
			if err != nil {
				return nil, fmt.Errorf("quote lookup failed for %s: %v", input.Symbol, err)
			}
			if q == nil {
				return nil, fmt.Errorf("no quote available for %s", input.Symbol)
			}
			return &LiveQuoteOutput{
				Symbol:        q.Symbol,
				Name:          q.ShortName,
				Price:         q.RegularMarketPrice,
				ChangePercent: q.RegularMarketChangePercent,
				PreviousClose: q.RegularMarketPreviousClose,
				Currency:      q.CurrencyID,
				MarketState:   string(q.MarketState),
			}, nil
		},
	)
}

type DocumentInsightsInput struct {
	StockTicker string `json:"stock_ticker"`
	Query       string `json:"query"`
}

// DocumentInsightsOutput combines retrieval hits and the structured
// extraction from one research report.
type DocumentInsightsOutput struct {
	StockTicker      string                   `json:"stock_ticker"`
	PDFSource        string                   `json:"pdf_source"`
	RelevantSections []docintel.RankedSection `json:"relevant_sections,omitempty"`
	DetailedAnalysis *docintel.Extraction     `json:"detailed_analysis,omitempty"`
}

func NewDocumentInsightsTool(svc docintel.Service, locator *docintel.ReportLocator) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_document_insights",
			Desc: "Extract analyst insights and key figures from the PDF research report of a stock.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"stock_ticker": {
					Type:     "string",
					Desc:     "Stock ticker symbol whose report to analyze",
					Required: true,
				},
				"query": {
					Type:     "string",
					Desc:     "Optional focus for the extraction, e.g. 'dividend outlook'",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input DocumentInsightsInput) (*DocumentInsightsOutput, error) {
			if input.StockTicker == "" {
				return nil, fmt.Errorf("stock_ticker parameter is required")
			}

			pdfPath, err := locator.Locate(input.StockTicker)
			if err != nil {
				return nil, err
			}

			queryContext := input.Query
			if queryContext == "" {
				queryContext = fmt.Sprintf("financial analysis performance outlook %s", input.StockTicker)
			}

			out := &DocumentInsightsOutput{
				StockTicker: input.StockTicker,
				PDFSource:   filepath.Base(pdfPath),
			}

			extraction, err := svc.Extract(ctx, pdfPath, queryContext)
			if err != nil {
				return nil, err
			}
			out.DetailedAnalysis = extraction

			if sections, err := svc.Search(ctx, pdfPath, queryContext); err == nil {
				out.RelevantSections = sections
			}
			return out, nil
		},
	)
}
