// Package marketdata models provider price payloads as a tagged union,
// selects the best available close-price series by fixed priority, and
// implements the fetch collaborators (primary aggregates API, Stooq CSV,
// Yahoo chart, RSS headlines) behind it.
package marketdata

import "github.com/seenimoa/riskdesk/pkg/models"

// PayloadKind discriminates the known provider response shapes.
type PayloadKind int

const (
	// KindAbsent marks a missing or malformed provider response.
	KindAbsent PayloadKind = iota
	// KindAggs is a decoded series of close values.
	KindAggs
	// KindCSV is a delimited-text table that must contain a Close column.
	KindCSV
)

// Payload is one provider response. The zero value is Absent.
type Payload struct {
	Kind   PayloadKind
	Closes []float64 // KindAggs
	CSV    string    // KindCSV
}

// Absent is the explicit missing/malformed payload variant.
var Absent = Payload{}

// AggsPayload wraps a decoded close series.
func AggsPayload(closes []float64) Payload {
	return Payload{Kind: KindAggs, Closes: closes}
}

// CSVPayload wraps delimited text carrying a Close column.
func CSVPayload(text string) Payload {
	return Payload{Kind: KindCSV, CSV: text}
}

// Bundle is everything fetched for one report run. Any field may be absent;
// the extractor and factsheet builder degrade rather than fail.
type Bundle struct {
	Ticker    string
	Primary   Payload // paid aggregates API
	FallbackA Payload // Stooq daily CSV
	FallbackB Payload // Yahoo chart
	Details   *models.TickerDetails
	Headlines []models.Headline
}
