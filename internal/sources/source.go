// Package sources adapts market data providers into metric sources for
// ratio resolution. A source never returns an error: every provider
// failure, malformed payload or panic becomes an Unavailable outcome.
package sources

import (
	"context"
	"fmt"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
)

// Outcome is the result of one source fetch: Found with a non-empty
// metric set, or Unavailable with a reason.
type Outcome struct {
	Metrics models.MetricSet
	Reason  string
}

// Found wraps a metric set. An empty set is reported as unavailable.
func Found(set models.MetricSet) Outcome {
	if len(set) == 0 {
		return Unavailable("no metrics resolved")
	}
	return Outcome{Metrics: set}
}

// Unavailable builds a no-data outcome
func Unavailable(reason string) Outcome {
	return Outcome{Reason: reason}
}

// OK reports whether the outcome carries metrics
func (o Outcome) OK() bool {
	return len(o.Metrics) > 0
}

func (o Outcome) label() string {
	if o.OK() {
		return "found"
	}
	return "unavailable"
}

// Source resolves metrics for a ticker
type Source interface {
	Name() string
	Fetch(ctx context.Context, ticker string) Outcome
}

// PageSource resolves metrics from a caller-supplied page
type PageSource interface {
	Name() string
	FetchPage(ctx context.Context, url string) Outcome
}

// Bind turns a page source into a Source that always reads url
func Bind(page PageSource, url string) Source {
	return boundPage{page: page, url: url}
}

type boundPage struct {
	page PageSource
	url  string
}

func (b boundPage) Name() string { return b.page.Name() }

func (b boundPage) Fetch(ctx context.Context, _ string) Outcome {
	return b.page.FetchPage(ctx, b.url)
}

// SafeFetch runs src, converting a panic into an Unavailable outcome
func SafeFetch(ctx context.Context, src Source, ticker string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Unavailable(fmt.Sprintf("panic: %v", r))
		}
	}()
	return src.Fetch(ctx, ticker)
}

// observer logs and counts outcomes for a named source
type observer struct {
	name    string
	logger  *common.Logger
	metrics *metrics.Manager
}

func newObserver(name string, logger *common.Logger, m *metrics.Manager) observer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return observer{name: name, logger: logger, metrics: m}
}

func (o observer) done(key string, out Outcome) Outcome {
	o.metrics.SourceOutcome(o.name, out.label())
	ev := o.logger.Debug().Str("source", o.name).Str("key", key)
	if out.OK() {
		ev.Int("metrics", len(out.Metrics)).Msg("Source resolved metrics")
	} else {
		ev.Str("reason", out.Reason).Msg("Source unavailable")
	}
	return out
}

func (o observer) fail(key string, err error) Outcome {
	return o.done(key, Unavailable(err.Error()))
}
