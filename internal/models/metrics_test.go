package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetricID(t *testing.T) {
	tests := []struct {
		in     string
		want   MetricID
		wantOK bool
	}{
		{"ROE", MetricROE, true},
		{" roe ", MetricROE, true},
		{"debt/equity", MetricDebtToEquity, true},
		{"Revenue Growth (YoY)", MetricRevenueGrowth, true},
		{"revenue growth yoy", MetricRevenueGrowth, true},
		{"Return on Equity", MetricROE, true},
		{"Dividend Yield", MetricID("Dividend Yield"), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMetricID(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestMetricSet_KeysCanonicalOrder(t *testing.T) {
	set := MetricSet{
		MetricPE:           21.3,
		MetricDebtToEquity: 0.4,
		MetricROE:          0.2,
		"Custom":           1,
	}
	assert.Equal(t, []MetricID{MetricROE, MetricDebtToEquity, MetricPE, "Custom"}, set.Keys())
}

func TestMetricSet_GetNil(t *testing.T) {
	var set MetricSet
	_, ok := set.Get(MetricROE)
	assert.False(t, ok)
}

func TestResolution_MarshalUnavailableSentinel(t *testing.T) {
	data, err := json.Marshal(UnavailableResolution("Ratios not available for this ticker"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Info":"Ratios not available for this ticker"}`, string(data))
}

func TestResolution_MarshalAvailable(t *testing.T) {
	r := Resolved("key_metrics", MetricSet{MetricROE: 0.15, MetricDebtToEquity: 1.2})
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ROE":0.15,"Debt/Equity":1.2}`, string(data))
	assert.True(t, r.Available())
}

func TestResolution_EmptyAvailableIsNotSentinel(t *testing.T) {
	r := Resolved("x", MetricSet{})
	assert.True(t, r.Available())
	assert.False(t, UnavailableResolution("none").Available())
}

func TestMetricID_IsGrowth(t *testing.T) {
	assert.True(t, MetricEPSGrowth.IsGrowth())
	assert.True(t, MetricFreeCashFlowGrowth.IsGrowth())
	assert.False(t, MetricROE.IsGrowth())
	assert.Len(t, AllMetrics(), 10)
}
