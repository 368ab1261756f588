package sources

import (
	"context"
	"sort"
	"strings"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/normalize"
)

// keyMetricAliases lists provider key names per metric, lower-cased, in
// match priority order.
var keyMetricAliases = []struct {
	metric  models.MetricID
	aliases []string
}{
	{models.MetricROE, []string{"returnonequity", "returnonequityttm", "returnoninvestedcapital", "returnonassets", "returnonassetsttm"}},
	{models.MetricROCE, []string{"returnoncapitalemployed", "returnoncapital"}},
	{models.MetricDebtToEquity, []string{"debttoequity", "totaldebttoequity", "totaldebt/equity"}},
	{models.MetricPE, []string{"peratio", "priceearningsratio", "trailingpe"}},
	{models.MetricPB, []string{"pbratio", "pricetobook", "pricebookmrq"}},
	{models.MetricEVToEBITDA, []string{"enterprisevalueoverebitda", "evtoebitda", "enterprisevalueebitda"}},
}

// KeyMetricsSource reads a provider's structured key metrics
type KeyMetricsSource struct {
	provider interfaces.KeyMetricsProvider
	obs      observer
}

// NewKeyMetricsSource creates the structured-metrics source
func NewKeyMetricsSource(provider interfaces.KeyMetricsProvider, logger *common.Logger, m *metrics.Manager) *KeyMetricsSource {
	return &KeyMetricsSource{provider: provider, obs: newObserver("key_metrics", logger, m)}
}

func (s *KeyMetricsSource) Name() string { return "key_metrics" }

// Fetch matches provider keys case-insensitively against each metric's
// aliases. The first alias present decides the metric; an unparsable
// value leaves the metric missing.
func (s *KeyMetricsSource) Fetch(ctx context.Context, ticker string) Outcome {
	km, err := s.provider.KeyMetrics(ctx, ticker)
	if err != nil {
		return s.obs.fail(ticker, err)
	}

	lowered := lowerKeys(km.Latest())
	set := models.MetricSet{}
	for _, entry := range keyMetricAliases {
		for _, alias := range entry.aliases {
			raw, ok := lowered[alias]
			if !ok {
				continue
			}
			if v, ok := normalize.Normalize(raw, entry.metric); ok {
				set[entry.metric] = v
			}
			break
		}
	}

	return s.obs.done(ticker, Found(set))
}

// lowerKeys lower-cases keys; on collision the lexically smallest
// original key wins so the result does not depend on map order.
func lowerKeys(m map[string]any) map[string]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	for _, k := range keys {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, seen := out[lk]; !seen {
			out[lk] = m[k]
		}
	}
	return out
}
