// Package normalize coerces raw provider values into canonical metric values
package normalize

import "github.com/bobmcallan/finscreen/internal/models"

// Policy selects the post-parse treatment of a value
type Policy int

const (
	// PolicyAmount leaves the value as parsed (statement line items, unknown metrics)
	PolicyAmount Policy = iota
	// PolicyRatio leaves the value as parsed (multiples and leverage ratios)
	PolicyRatio
	// PolicyPercent expects a fractional decimal; magnitudes above 1.0 are
	// assumed to be whole percentages and divided by 100
	PolicyPercent
)

var policies = map[models.MetricID]Policy{
	models.MetricROE:                PolicyPercent,
	models.MetricROCE:               PolicyPercent,
	models.MetricRevenueGrowth:      PolicyPercent,
	models.MetricNetIncomeGrowth:    PolicyPercent,
	models.MetricEPSGrowth:          PolicyPercent,
	models.MetricFreeCashFlowGrowth: PolicyPercent,
	models.MetricDebtToEquity:       PolicyRatio,
	models.MetricPE:                 PolicyRatio,
	models.MetricPB:                 PolicyRatio,
	models.MetricEVToEBITDA:         PolicyRatio,
}

// PolicyFor returns the normalization policy for a metric
func PolicyFor(id models.MetricID) Policy {
	if p, ok := policies[id]; ok {
		return p
	}
	return PolicyAmount
}
