package marketdata

import (
	"math"
	"strconv"
	"strings"

	"github.com/seenimoa/riskdesk/pkg/models"
)

const (
	// minUsablePoints is the minimum clean point count for a source to
	// qualify. Matches the statistics engine's ok threshold.
	minUsablePoints = 10
	// maxWindow bounds every statistics window to the most recent points.
	maxWindow = 30
)

// ExtractSeries selects the best available close-price series from the
// bundle by fixed priority: primary aggregates, then the first free
// fallback, then the second. A source qualifies only with at least 10
// usable points after discarding non-positive or malformed values; only
// the most recent 30 points are retained. When nothing qualifies the
// result is an empty series with provenance "none" — never an error.
func ExtractSeries(b Bundle) models.PriceSeries {
	candidates := []struct {
		payload Payload
		source  models.Provenance
	}{
		{b.Primary, models.ProvenancePrimary},
		{b.FallbackA, models.ProvenanceFallbackA},
		{b.FallbackB, models.ProvenanceFallbackB},
	}

	for _, c := range candidates {
		closes := usableCloses(c.payload)
		if len(closes) >= minUsablePoints {
			if len(closes) > maxWindow {
				closes = closes[len(closes)-maxWindow:]
			}
			return models.PriceSeries{Closes: closes, Source: c.source}
		}
	}
	return models.PriceSeries{Source: models.ProvenanceNone}
}

// usableCloses extracts the clean close values from a payload, dropping
// non-positive, NaN and malformed entries. Absent payloads yield nil.
func usableCloses(p Payload) []float64 {
	switch p.Kind {
	case KindAggs:
		out := make([]float64, 0, len(p.Closes))
		for _, c := range p.Closes {
			if c > 0 && !math.IsNaN(c) && !math.IsInf(c, 0) {
				out = append(out, c)
			}
		}
		return out
	case KindCSV:
		return closesFromCSV(p.CSV)
	default:
		return nil
	}
}

// closesFromCSV pulls the Close column out of a delimited-text table such
// as Stooq's daily download ("Date,Open,High,Low,Close,Volume"). Rows that
// are short, non-numeric or non-positive are skipped; a table without a
// Close header yields nil.
func closesFromCSV(text string) []float64 {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil
	}

	closeIdx := -1
	header := strings.Split(lines[0], ",")
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "Close") {
			closeIdx = i
			break
		}
	}
	if closeIdx < 0 {
		return nil
	}

	var closes []float64
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) <= closeIdx {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[closeIdx]), 64)
		if err != nil || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		closes = append(closes, v)
	}
	return closes
}
