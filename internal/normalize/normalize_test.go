package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/finscreen/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		metric models.MetricID
		want   float64
		wantOK bool
	}{
		{"percent string", "15%", models.MetricROE, 0.15, true},
		{"decimal string", "0.15", models.MetricROE, 0.15, true},
		{"delimited ratio", "1,234", models.MetricDebtToEquity, 1234.0, true},
		{"whole percent int", 15, models.MetricROE, 0.15, true},
		{"whole percent float", 15.0, models.MetricROCE, 0.15, true},
		{"negative whole percent", -12.5, models.MetricROE, -0.125, true},
		{"ratio kept above one", 1.5, models.MetricDebtToEquity, 1.5, true},
		{"pe kept", "23.4", models.MetricPE, 23.4, true},
		{"growth scaled", "8", models.MetricRevenueGrowth, 0.08, true},
		{"zero percent", "0%", models.MetricROE, 0.0, true},
		{"negative zero percent", "-0.0000000001%", models.MetricROE, 0.0, true},
		{"padded", "  12.5 ", models.MetricPB, 12.5, true},
		{"decorated", "₹1,200 Cr", models.MetricPE, 1200.0, true},
		{"json number", json.Number("0.2"), models.MetricROE, 0.2, true},
		{"int64", int64(3), models.MetricDebtToEquity, 3.0, true},
		{"N/A", "N/A", models.MetricROE, 0, false},
		{"nan string", "NaN", models.MetricDebtToEquity, 0, false},
		{"dash", "-", models.MetricROE, 0, false},
		{"double dash", "--", models.MetricROE, 0, false},
		{"empty", "", models.MetricROE, 0, false},
		{"only dot", "abc.", models.MetricROE, 0, false},
		{"dash dot", "-.", models.MetricROE, 0, false},
		{"garbage percent", "abc%", models.MetricROE, 0, false},
		{"multiple dots", "1.2.3", models.MetricPE, 0, false},
		{"nil", nil, models.MetricROE, 0, false},
		{"NaN float", math.NaN(), models.MetricROE, 0, false},
		{"Inf float", math.Inf(1), models.MetricPE, 0, false},
		{"bool", true, models.MetricROE, 0, false},
		{"slice", []float64{1}, models.MetricROE, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw, tt.metric)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestNormalize_ZeroPercentIsPositiveZero(t *testing.T) {
	got, ok := Normalize("-0%", models.MetricROE)
	assert.True(t, ok)
	assert.False(t, math.Signbit(got))
}

func TestNormalize_IdempotentForCanonicalDecimals(t *testing.T) {
	inputs := []float64{0, 0.15, -0.3, 1.0, 0.999, -1.0}
	for _, metric := range models.AllMetrics() {
		for _, in := range inputs {
			once, ok := Normalize(in, metric)
			assert.True(t, ok)
			twice, ok := Normalize(once, metric)
			assert.True(t, ok)
			assert.Equal(t, once, twice, "metric %s input %v", metric, in)
		}
	}
}

func TestNormalize_ScaleCorrectionIsMetricAware(t *testing.T) {
	roe, _ := Normalize(150, models.MetricROE)
	assert.InDelta(t, 1.5, roe, 1e-12)

	de, _ := Normalize(150, models.MetricDebtToEquity)
	assert.Equal(t, 150.0, de)

	// a real 150% return reads as 1.5%
	genuine, _ := Normalize(1.5, models.MetricROE)
	assert.InDelta(t, 0.015, genuine, 1e-12)
}

func TestToNumber_NoScaling(t *testing.T) {
	v, ok := ToNumber("352,583,000,000.00")
	assert.True(t, ok)
	assert.Equal(t, 352583000000.0, v)

	v, ok = ToNumber("15%")
	assert.True(t, ok)
	assert.InDelta(t, 0.15, v, 1e-12)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, PolicyPercent, PolicyFor(models.MetricROE))
	assert.Equal(t, PolicyPercent, PolicyFor(models.MetricFreeCashFlowGrowth))
	assert.Equal(t, PolicyRatio, PolicyFor(models.MetricDebtToEquity))
	assert.Equal(t, PolicyRatio, PolicyFor(models.MetricEVToEBITDA))
	assert.Equal(t, PolicyAmount, PolicyFor("totalRevenue"))
}
