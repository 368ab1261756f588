package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bobmcallan/finscreen/internal/models"
)

// values this close to zero are reported as exactly 0.0
const zeroEpsilon = 1e-9

var missingSentinels = map[string]struct{}{
	"":    {},
	"nan": {},
	"n/a": {},
	"-":   {},
	"--":  {},
}

// Normalize parses raw into the canonical value for metric id.
// The bool is false when the value is missing or cannot be parsed.
//
// Percentage-like metrics (ROE, ROCE, growth rates) are divided by 100 when
// their magnitude exceeds 1.0, so "15", 15 and "15%" all become 0.15. This
// misreads a genuine 150% return as 1.5%.
func Normalize(raw any, id models.MetricID) (float64, bool) {
	v, ok := ToNumber(raw)
	if !ok {
		return 0, false
	}
	if PolicyFor(id) == PolicyPercent && math.Abs(v) > 1.0 {
		return v / 100.0, true
	}
	return v, true
}

// ToNumber coerces numbers, percent strings ("15%"), delimited strings
// ("1,234") and decorated strings ("(1,234) Cr") to float64 without any
// metric-specific scaling.
func ToNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		return parseString(string(v))
	case string:
		return parseString(v)
	case *float64:
		if v == nil {
			return 0, false
		}
		return finite(*v)
	default:
		return 0, false
	}
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseString(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if _, missing := missingSentinels[strings.ToLower(s)]; missing {
		return 0, false
	}

	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0, false
		}
		if math.Abs(v) <= zeroEpsilon {
			return 0.0, true
		}
		return finite(v / 100.0)
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	switch cleaned {
	case "", ".", "-", "-.":
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return finite(v)
}
