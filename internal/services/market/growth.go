package market

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/normalize"
)

// GrowthUnavailable is the info text of an unavailable growth resolution
const GrowthUnavailable = "Growth data not available"

var growthItems = []struct {
	metric models.MetricID
	column string
}{
	{models.MetricRevenueGrowth, models.ColumnTotalRevenue},
	{models.MetricNetIncomeGrowth, models.ColumnNetIncome},
	{models.MetricEPSGrowth, models.ColumnDilutedEPS},
	{models.MetricFreeCashFlowGrowth, models.ColumnFreeCashFlow},
}

var revenueKeywords = []string{"total revenue", "totalrevenue", "revenue"}

// GrowthResolver derives year-over-year growth from annual financial data
type GrowthResolver struct {
	series     interfaces.FinancialDataProvider
	statements interfaces.StatementsProvider
	logger     *common.Logger
	metrics    *metrics.Manager
}

// NewGrowthResolver creates a growth resolver. statements is the revenue
// fallback and may be nil.
func NewGrowthResolver(series interfaces.FinancialDataProvider, statements interfaces.StatementsProvider, logger *common.Logger, m *metrics.Manager) *GrowthResolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &GrowthResolver{series: series, statements: statements, logger: logger, metrics: m}
}

// Resolve computes growth for every tracked line item with two annual
// values. Provider failures are absorbed into the unavailable sentinel.
func (g *GrowthResolver) Resolve(ctx context.Context, ticker string) models.Resolution {
	set, source := g.fromSeries(ctx, ticker), "financial_data"
	if len(set) == 0 {
		set, source = g.fromStatements(ctx, ticker), "statements"
	}

	if len(set) == 0 {
		g.metrics.Resolution("growth", string(models.ResolutionUnavailable))
		return models.UnavailableResolution(GrowthUnavailable)
	}
	g.metrics.Resolution("growth", string(models.ResolutionAvailable))
	return models.Resolved(source, set)
}

func (g *GrowthResolver) fromSeries(ctx context.Context, ticker string) (set models.MetricSet) {
	if g.series == nil {
		return nil
	}
	defer g.absorbPanic(ticker, &set)

	rows, err := g.series.FinancialData(ctx, ticker)
	if err != nil {
		g.logger.Debug().Err(err).Str("ticker", ticker).Msg("Financial data unavailable")
		return nil
	}
	return GrowthFromSeries(rows)
}

func (g *GrowthResolver) fromStatements(ctx context.Context, ticker string) (set models.MetricSet) {
	if g.statements == nil {
		return nil
	}
	defer g.absorbPanic(ticker, &set)

	st, err := g.statements.Statements(ctx, ticker)
	if err != nil || st == nil {
		return nil
	}
	row, ok := st.IncomeStatement.Find(revenueKeywords...)
	if !ok {
		return nil
	}

	var values []float64
	for _, raw := range row.Values {
		if v, ok := normalize.ToNumber(raw); ok {
			values = append(values, v)
		}
	}
	if v, ok := yoy(values); ok {
		return models.MetricSet{models.MetricRevenueGrowth: v}
	}
	return nil
}

func (g *GrowthResolver) absorbPanic(ticker string, set *models.MetricSet) {
	if r := recover(); r != nil {
		g.logger.Warn().Str("ticker", ticker).Str("panic", fmt.Sprint(r)).Msg("Growth provider panicked")
		*set = nil
	}
}

// GrowthFromSeries computes growth per tracked item from the two most
// recent annual rows carrying that item.
func GrowthFromSeries(rows models.FinancialSeries) models.MetricSet {
	annual := make(models.FinancialSeries, 0, len(rows))
	for _, r := range rows {
		if r.PeriodType == models.PeriodAnnual {
			annual = append(annual, r)
		}
	}
	sort.SliceStable(annual, func(i, j int) bool {
		return annual[i].AsOfDate.After(annual[j].AsOfDate)
	})

	set := models.MetricSet{}
	for _, item := range growthItems {
		var values []float64
		for _, r := range annual {
			if v, ok := r.Values[item.column]; ok && !math.IsNaN(v) {
				values = append(values, v)
			}
			if len(values) == 2 {
				break
			}
		}
		if v, ok := yoy(values); ok {
			set[item.metric] = v
		}
	}
	return set
}

// yoy returns (latest - previous) / |previous| rounded to 4 decimals,
// reading values most recent first.
func yoy(values []float64) (float64, bool) {
	if len(values) < 2 || values[1] == 0 {
		return 0, false
	}
	latest, prev := values[0], values[1]
	return math.Round((latest-prev)/math.Abs(prev)*1e4) / 1e4, true
}
