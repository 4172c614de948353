// Package models defines the core data structures used throughout riskdesk.
package models

// Provenance identifies which price source a series was selected from.
type Provenance string

const (
	ProvenancePrimary   Provenance = "primary-aggregates"
	ProvenanceFallbackA Provenance = "free-fallback-A"
	ProvenanceFallbackB Provenance = "free-fallback-B"
	ProvenanceNone      Provenance = "none"
)

// PriceSeries is an ordered sequence of positive close prices, oldest first,
// tagged with the source it was selected from.
type PriceSeries struct {
	Closes []float64  `json:"closes"`
	Source Provenance `json:"source"`
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int { return len(s.Closes) }

// Empty reports whether the series carries no usable points.
func (s PriceSeries) Empty() bool { return len(s.Closes) == 0 }

// Last returns the most recent close, or 0 for an empty series.
func (s PriceSeries) Last() float64 {
	if len(s.Closes) == 0 {
		return 0
	}
	return s.Closes[len(s.Closes)-1]
}

// VolatilityRegime is a coarse classification of annualized volatility.
type VolatilityRegime string

const (
	RegimeCalm     VolatilityRegime = "CALM"
	RegimeNormal   VolatilityRegime = "NORMAL"
	RegimeElevated VolatilityRegime = "ELEVATED"
	RegimeUnknown  VolatilityRegime = "UNKNOWN"
)

// StatsRecord holds the fixed statistics computed from one price series.
// Optional fields are nil when the data was insufficient to derive them;
// they are never populated with stand-in values. LastClose and PeriodReturn
// are meaningful only when OK is true.
type StatsRecord struct {
	OK                bool             `json:"ok"`
	LastClose         float64          `json:"last_close"`
	PeriodReturn      float64          `json:"period_return"`
	AnnualizedVol     *float64         `json:"annualized_volatility,omitempty"`
	Regime            VolatilityRegime `json:"volatility_regime"`
	MaxDrawdown       *float64         `json:"max_drawdown,omitempty"`
	BestPeriodReturn  *float64         `json:"best_period_return,omitempty"`
	WorstPeriodReturn *float64         `json:"worst_period_return,omitempty"`
	NPoints           int              `json:"n_points"`
	Source            Provenance       `json:"source"`
}

// RelativeStats relates a subject series to a benchmark series. Correlation
// and Beta are nil when either return series has non-positive variance.
type RelativeStats struct {
	Correlation    *float64 `json:"correlation,omitempty"`
	Beta           *float64 `json:"beta,omitempty"`
	RelativeReturn *float64 `json:"relative_return,omitempty"`
}
