// Package factsheet builds the deterministic fact block consumed verbatim by
// every generation stage. The builder is a pure function: identical inputs
// produce byte-identical output, so tests can assert exact text.
package factsheet

import (
	"fmt"

	"github.com/seenimoa/riskdesk/pkg/models"
)

// Input carries everything the builder merges into one factsheet.
type Input struct {
	Ticker   string
	Details  *models.TickerDetails
	Subject  models.StatsRecord
	Bench    *models.StatsRecord
	BenchTicker string
	Relative *models.RelativeStats
}

// Build merges descriptive metadata, subject statistics and optional
// benchmark statistics into an ordered factsheet. Absent metadata fields
// produce no line; statistics lines appear only when the underlying record
// is ok and the field was derivable.
func Build(in Input) models.Factsheet {
	b := newBuilder()

	b.add("TICKER", in.Ticker)
	if d := in.Details; d != nil {
		b.add("NAME", d.Name)
		b.add("SECTOR", d.Sector)
		b.add("EXCHANGE", d.Exchange)
		b.add("CURRENCY", d.Currency)
		if d.MarketCap != nil {
			b.add("MARKET_CAP", fmt.Sprintf("%.0f", *d.MarketCap))
		}
	}

	b.add("DATA_QUALITY", qualityLabel(in.Subject))
	writeStats(b, "", in.Subject)

	if in.Bench != nil {
		label := in.BenchTicker
		if label == "" {
			label = "benchmark"
		}
		b.add("BENCHMARK", label)
		b.add("BENCHMARK_DATA_QUALITY", qualityLabel(*in.Bench))
		writeStats(b, "BENCHMARK_", *in.Bench)
	}

	if r := in.Relative; r != nil {
		b.addFloat("CORRELATION_TO_BENCHMARK", r.Correlation, "%.4f")
		b.addFloat("BETA_TO_BENCHMARK", r.Beta, "%.4f")
		b.addPct("RELATIVE_RETURN", r.RelativeReturn)
	}

	return models.Factsheet{Lines: b.lines, Fields: b.fields}
}

// qualityLabel derives the authoritative data-quality value from the stats
// record's ok flag, point count and provenance.
func qualityLabel(rec models.StatsRecord) string {
	if rec.OK {
		return fmt.Sprintf("OK (n=%d, source=%s)", rec.NPoints, rec.Source)
	}
	return fmt.Sprintf("LOW (insufficient clean price data, n=%d, source=%s)", rec.NPoints, rec.Source)
}

func writeStats(b *builder, prefix string, rec models.StatsRecord) {
	if !rec.OK {
		return
	}
	b.add(prefix+"LAST_CLOSE", fmt.Sprintf("%.4f", rec.LastClose))
	b.add(prefix+"PERIOD_RETURN", pct(rec.PeriodReturn))
	if rec.AnnualizedVol != nil {
		b.add(prefix+"ANNUALIZED_VOLATILITY", pct(*rec.AnnualizedVol))
	}
	b.add(prefix+"VOLATILITY_REGIME", string(rec.Regime))
	b.addPct(prefix+"MAX_DRAWDOWN", rec.MaxDrawdown)
	b.addPct(prefix+"BEST_PERIOD_RETURN", rec.BestPeriodReturn)
	b.addPct(prefix+"WORST_PERIOD_RETURN", rec.WorstPeriodReturn)
}

func pct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

type builder struct {
	lines  []string
	fields map[string]string
}

func newBuilder() *builder {
	return &builder{fields: make(map[string]string)}
}

// add appends a "LABEL: value" line, skipping empty values entirely.
func (b *builder) add(label, value string) {
	if value == "" {
		return
	}
	b.lines = append(b.lines, label+": "+value)
	b.fields[label] = value
}

func (b *builder) addFloat(label string, v *float64, format string) {
	if v == nil {
		return
	}
	b.add(label, fmt.Sprintf(format, *v))
}

func (b *builder) addPct(label string, v *float64) {
	if v == nil {
		return
	}
	b.add(label, pct(*v))
}
