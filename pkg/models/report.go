package models

import "time"

// TickerDetails holds descriptive metadata about a listed company. Every
// field is optional; absent fields produce no factsheet line.
type TickerDetails struct {
	Name      string   `json:"name,omitempty"`
	Sector    string   `json:"sector,omitempty"`
	Exchange  string   `json:"exchange,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
}

// Factsheet is the deterministic text block every generation stage consumes.
// It is built once per run and never mutated; downstream stages must not
// re-derive numbers from raw data.
type Factsheet struct {
	Lines  []string          `json:"lines"`
	Fields map[string]string `json:"fields"`
}

// Text returns the factsheet as a single newline-joined block.
func (f Factsheet) Text() string {
	out := ""
	for i, line := range f.Lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}

// DataQuality returns the factsheet's authoritative quality label
// ("OK" or "LOW").
func (f Factsheet) DataQuality() string {
	if v, ok := f.Fields["DATA_QUALITY"]; ok && len(v) >= 2 && v[:2] == "OK" {
		return "OK"
	}
	return "LOW"
}

// ValidationStatus records how a generated section cleared (or failed to
// clear) the structural checks.
type ValidationStatus string

const (
	StatusValid     ValidationStatus = "valid"
	StatusRepaired  ValidationStatus = "repaired"
	StatusExhausted ValidationStatus = "exhausted"
)

// Section is one validated block of generated text: a persona's analysis or
// the synthesis decision.
type Section struct {
	Name        string           `json:"name"`
	Text        string           `json:"text"`
	Status      ValidationStatus `json:"status"`
	RepairCalls int              `json:"repair_calls"`
}

// DecisionRecord is the synthesis stage's section plus the parsed decision
// fields and any deterministic rule overrides applied after validation.
type DecisionRecord struct {
	Section
	Decision        string   `json:"decision"`                    // IMPLEMENT/MODIFY/MONITOR/REJECT
	PositionSizePct *float64 `json:"position_size_pct,omitempty"` // parsed from FINAL POSITION SIZE
	RuleOverrides   []string `json:"rule_overrides,omitempty"`
}

// Headline is one news item attached to a report.
type Headline struct {
	Title     string    `json:"title"`
	Link      string    `json:"link,omitempty"`
	Published time.Time `json:"published,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// Report is the fully assembled committee report for one ticker.
type Report struct {
	Ticker    string         `json:"ticker"`
	Header    string         `json:"header"`
	Text      string         `json:"text"`
	Factsheet Factsheet      `json:"factsheet"`
	Decision  DecisionRecord `json:"decision"`
	Sections  []Section      `json:"sections"`
	Headlines []Headline     `json:"headlines,omitempty"`
}
