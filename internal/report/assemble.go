// Package report turns pipeline output into the final markdown document and
// splits it into comment-sized chunks for posting.
package report

import (
	"fmt"
	"strings"

	"github.com/seenimoa/riskdesk/pkg/models"
)

// Input carries everything the assembler lays out.
type Input struct {
	Ticker    string
	Factsheet models.Factsheet
	Decision  models.DecisionRecord
	Sections  []models.Section
	Headlines []models.Headline
	Regime    models.VolatilityRegime
	Source    models.Provenance
	Benchmark string
}

// Assemble renders the full committee report. Layout is fixed: header with
// provenance, rule-override notices, the Risk Officer decision, the
// factsheet, every persona section in committee order, then headlines.
func Assemble(in Input) *models.Report {
	var sb strings.Builder

	header := fmt.Sprintf("## Investment Committee Report: %s", in.Ticker)
	sb.WriteString(header)
	sb.WriteString("\n\n")

	meta := fmt.Sprintf("data quality: %s | source: %s | volatility regime: %s",
		in.Factsheet.DataQuality(), in.Source, in.Regime)
	if in.Benchmark != "" {
		meta += " | benchmark: " + in.Benchmark
	}
	sb.WriteString("_" + meta + "_\n")

	for _, override := range in.Decision.RuleOverrides {
		sb.WriteString("\n> **RULE OVERRIDE:** " + override + "\n")
	}

	sb.WriteString("\n### Risk Officer Decision")
	sb.WriteString(statusTag(in.Decision.Section))
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimSpace(in.Decision.Text))
	sb.WriteString("\n")

	sb.WriteString("\n### Factsheet\n\n```\n")
	sb.WriteString(in.Factsheet.Text())
	sb.WriteString("\n```\n")

	sb.WriteString("\n### Committee Sections\n")
	for _, sec := range in.Sections {
		fmt.Fprintf(&sb, "\n#### %s%s\n\n%s\n", sec.Name, statusTag(sec), strings.TrimSpace(sec.Text))
	}

	if len(in.Headlines) > 0 {
		sb.WriteString("\n### Recent Headlines\n\n")
		for _, h := range in.Headlines {
			if h.Link != "" {
				fmt.Fprintf(&sb, "- [%s](%s)\n", h.Title, h.Link)
			} else {
				fmt.Fprintf(&sb, "- %s\n", h.Title)
			}
		}
	}

	return &models.Report{
		Ticker:    in.Ticker,
		Header:    header,
		Text:      Sanitize(sb.String()),
		Factsheet: in.Factsheet,
		Decision:  in.Decision,
		Sections:  in.Sections,
		Headlines: in.Headlines,
	}
}

// statusTag renders a visible marker for sections that needed repair. Clean
// sections carry no tag.
func statusTag(sec models.Section) string {
	switch sec.Status {
	case models.StatusRepaired:
		return fmt.Sprintf(" _(repaired after %d pass(es))_", sec.RepairCalls)
	case models.StatusExhausted:
		return fmt.Sprintf(" _(FORMAT NOT ENFORCED after %d repair pass(es))_", sec.RepairCalls)
	default:
		return ""
	}
}

// Sanitize strips control characters that break markdown renderers, keeping
// newlines and tabs.
func Sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}
