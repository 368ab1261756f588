package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/normalize"
)

// PageRatiosSource scrapes ratios from a caller-supplied HTML page, such
// as a broker's ratios view, where each row is "label | latest value".
type PageRatiosSource struct {
	fetcher interfaces.TableFetcher
	obs     observer
}

// NewPageRatiosSource creates the scraped-fallback source
func NewPageRatiosSource(fetcher interfaces.TableFetcher, logger *common.Logger, m *metrics.Manager) *PageRatiosSource {
	return &PageRatiosSource{fetcher: fetcher, obs: newObserver("page", logger, m)}
}

func (s *PageRatiosSource) Name() string { return "page" }

// FetchPage returns the ratios of the first ratio-like table that maps at
// least one row.
func (s *PageRatiosSource) FetchPage(ctx context.Context, url string) Outcome {
	url = strings.TrimSpace(url)
	if url == "" {
		return s.obs.fail(url, fmt.Errorf("no fallback url"))
	}

	tables, err := s.fetcher.FetchTables(ctx, url)
	if err != nil {
		return s.obs.fail(url, err)
	}

	for _, t := range tables {
		if !isRatioTable(t) {
			continue
		}
		if set := mapRatioRows(t); len(set) > 0 {
			return s.obs.done(url, Found(set))
		}
	}
	return s.obs.fail(url, fmt.Errorf("no ratio table found"))
}

func isRatioTable(t models.HTMLTable) bool {
	headers := strings.ToLower(strings.Join(t.Headers, " "))
	if strings.Contains(headers, "return on equity") {
		return true
	}
	var sb strings.Builder
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(row, " "))
		sb.WriteByte(' ')
	}
	text := strings.ToLower(sb.String())
	return strings.Contains(text, "return on equity") || strings.Contains(text, "debt to equity")
}

// mapRatioRows reads column 0 as the label and column 1 as the value.
// Later rows overwrite earlier ones for the same metric.
func mapRatioRows(t models.HTMLTable) models.MetricSet {
	set := models.MetricSet{}
	put := func(id models.MetricID, raw string) {
		if v, ok := normalize.Normalize(raw, id); ok {
			set[id] = v
		} else {
			delete(set, id)
		}
	}

	for _, row := range t.Rows {
		if len(row) < 2 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(row[0]))
		if strings.Contains(name, "return on equity") {
			put(models.MetricROE, row[1])
		}
		if strings.Contains(name, "return on capital employed") || strings.Contains(name, "roce") {
			put(models.MetricROCE, row[1])
		}
		if strings.Contains(name, "debt to equity") || strings.Contains(name, "debt/equity") {
			put(models.MetricDebtToEquity, row[1])
		}
	}
	return set
}
