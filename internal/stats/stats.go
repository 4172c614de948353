// Package stats implements the deterministic market statistics engine.
// Every function here is pure: close-price series in, statistics out,
// no I/O and no clock reads. Insufficient data degrades to explicit
// not-ok / nil fields, never to an error or a stand-in value.
package stats

import (
	"math"

	"github.com/seenimoa/riskdesk/pkg/models"
)

const (
	// MinPoints is the minimum series length before statistics are
	// computed "ok".
	MinPoints = 10
	// MinDrawdownPoints is the minimum series length for max drawdown.
	MinDrawdownPoints = 3
	// MinOverlap is the minimum overlapping return observations for
	// correlation and beta against a benchmark.
	MinOverlap = 5
	// TradingDays is the annualization factor for daily volatility.
	TradingDays = 252

	calmThreshold   = 0.25
	normalThreshold = 0.40
)

// Compute turns a close-price series into a StatsRecord. A series shorter
// than MinPoints yields {OK:false} with every derived field nil.
func Compute(series models.PriceSeries) models.StatsRecord {
	rec := models.StatsRecord{
		NPoints: series.Len(),
		Source:  series.Source,
		Regime:  models.RegimeUnknown,
	}
	if series.Len() < MinPoints {
		return rec
	}

	closes := series.Closes
	rec.OK = true
	rec.LastClose = closes[len(closes)-1]
	if closes[0] > 0 {
		rec.PeriodReturn = closes[len(closes)-1]/closes[0] - 1
	}

	returns := PeriodReturns(closes)
	if len(returns) >= 2 {
		vol := stddev(returns) * math.Sqrt(TradingDays)
		rec.AnnualizedVol = &vol
	}
	rec.Regime = ClassifyRegime(rec.AnnualizedVol)

	if len(closes) >= MinDrawdownPoints {
		dd := maxDrawdown(closes)
		rec.MaxDrawdown = &dd
	}

	if len(returns) > 0 {
		best, worst := returns[0], returns[0]
		for _, r := range returns[1:] {
			if r > best {
				best = r
			}
			if r < worst {
				worst = r
			}
		}
		rec.BestPeriodReturn = &best
		rec.WorstPeriodReturn = &worst
	}

	return rec
}

// Relative relates a subject series to a benchmark. It returns nil unless
// both series compute ok and their return series overlap by at least
// MinOverlap points on the trailing window. Correlation and Beta are nil
// when either return series has non-positive variance.
func Relative(subject, bench models.PriceSeries) *models.RelativeStats {
	subjRec := Compute(subject)
	benchRec := Compute(bench)
	if !subjRec.OK || !benchRec.OK {
		return nil
	}

	subjReturns := PeriodReturns(subject.Closes)
	benchReturns := PeriodReturns(bench.Closes)

	n := len(subjReturns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	if n < MinOverlap {
		return nil
	}

	// Align to the trailing window of the shorter return series.
	a := subjReturns[len(subjReturns)-n:]
	b := benchReturns[len(benchReturns)-n:]

	rel := &models.RelativeStats{}
	diff := subjRec.PeriodReturn - benchRec.PeriodReturn
	rel.RelativeReturn = &diff

	varA := variance(a)
	varB := variance(b)
	if varA > 0 && varB > 0 {
		cov := covariance(a, b)
		corr := cov / math.Sqrt(varA*varB)
		beta := cov / varB
		rel.Correlation = &corr
		rel.Beta = &beta
	}

	return rel
}

// ClassifyRegime maps an annualized volatility estimate onto a coarse
// regime label. A nil estimate is UNKNOWN.
func ClassifyRegime(vol *float64) models.VolatilityRegime {
	switch {
	case vol == nil:
		return models.RegimeUnknown
	case *vol < calmThreshold:
		return models.RegimeCalm
	case *vol < normalThreshold:
		return models.RegimeNormal
	default:
		return models.RegimeElevated
	}
}

// PeriodReturns computes period-over-period simple returns, skipping any
// step whose previous close is non-positive.
func PeriodReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 {
			returns = append(returns, closes[i]/closes[i-1]-1)
		}
	}
	return returns
}

// maxDrawdown returns the most negative peak-to-trough decline, expressed
// as close/peak − 1. It is 0 for a monotonically non-decreasing series.
func maxDrawdown(closes []float64) float64 {
	peak := closes[0]
	maxDD := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := c/peak - 1; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// variance is the sample (n−1) variance.
func variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(data)-1)
}

func stddev(data []float64) float64 {
	return math.Sqrt(variance(data))
}

// covariance is the sample covariance of two equal-length series.
func covariance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	ma, mb := mean(a), mean(b)
	sum := 0.0
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(len(a)-1)
}
