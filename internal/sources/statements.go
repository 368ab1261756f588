package sources

import (
	"context"
	"fmt"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/normalize"
)

var (
	netIncomeKeywords   = []string{"net income", "netincome", "net income applicable"}
	equityKeywords      = []string{"total stockholder equity", "totalstockholderequity", "total shareholders' equity", "total equity", "totalequity"}
	totalAssetsKeywords = []string{"total assets", "totalassets"}
	totalLiabKeywords   = []string{"total liab", "totalliab", "total liabilities"}
	ebitKeywords        = []string{"ebit", "operating income", "operatingincome"}
)

// StatementsSource derives ratios from the most recent period of the
// income statement and balance sheet.
type StatementsSource struct {
	provider interfaces.StatementsProvider
	obs      observer
}

// NewStatementsSource creates the computed-from-statements source
func NewStatementsSource(provider interfaces.StatementsProvider, logger *common.Logger, m *metrics.Manager) *StatementsSource {
	return &StatementsSource{provider: provider, obs: newObserver("statements", logger, m)}
}

func (s *StatementsSource) Name() string { return "statements" }

// Fetch computes ROE, ROCE and Debt/Equity, skipping any ratio whose
// inputs are missing or whose denominator is zero, then adds P/E and P/B
// from the quick info when present.
func (s *StatementsSource) Fetch(ctx context.Context, ticker string) Outcome {
	st, err := s.provider.Statements(ctx, ticker)
	if err != nil {
		return s.obs.fail(ticker, err)
	}
	if st == nil || st.IncomeStatement.Empty() || st.BalanceSheet.Empty() {
		return s.obs.fail(ticker, fmt.Errorf("statements unavailable"))
	}

	netIncome, okNI := latestValue(st.IncomeStatement, netIncomeKeywords)
	equity, okEq := latestValue(st.BalanceSheet, equityKeywords)
	assets, okAssets := latestValue(st.BalanceSheet, totalAssetsKeywords)
	liab, okLiab := latestValue(st.BalanceSheet, totalLiabKeywords)
	ebit, okEBIT := latestValue(st.IncomeStatement, ebitKeywords)

	set := models.MetricSet{}
	put := func(id models.MetricID, raw float64) {
		if v, ok := normalize.Normalize(raw, id); ok {
			set[id] = v
		}
	}

	if okNI && okEq && equity != 0 {
		put(models.MetricROE, netIncome/equity)
	}
	if okEBIT && okAssets && okLiab {
		if capitalEmployed := assets - liab; capitalEmployed != 0 {
			put(models.MetricROCE, ebit/capitalEmployed)
		}
	}
	if okLiab && okEq && equity != 0 {
		put(models.MetricDebtToEquity, liab/equity)
	}

	if pe, ok := quickPE(st.QuickInfo); ok {
		put(models.MetricPE, pe)
	}
	if pb, ok := firstNumber(st.QuickInfo, "priceToBook", "PriceBookMRQ"); ok {
		put(models.MetricPB, pb)
	}

	return s.obs.done(ticker, Found(set))
}

// latestValue finds the first row matching any keyword and parses its
// most recent cell.
func latestValue(t *models.Table, keywords []string) (float64, bool) {
	row, ok := t.Find(keywords...)
	if !ok {
		return 0, false
	}
	return normalize.ToNumber(row.First())
}

func quickPE(info map[string]any) (float64, bool) {
	if pe, ok := firstNumber(info, "trailingPE", "PERatio"); ok {
		return pe, true
	}
	price, okPrice := firstNumber(info, "regularMarketPrice")
	eps, okEPS := firstNumber(info, "epsTrailingTwelveMonths")
	if okPrice && okEPS && eps != 0 {
		return price / eps, true
	}
	return 0, false
}

func firstNumber(info map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := normalize.ToNumber(info[k]); ok {
			return v, true
		}
	}
	return 0, false
}
