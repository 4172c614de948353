// Package committee implements the multi-persona generation pipeline: a
// table of analyst personas, the validator/repairer that forces free-text
// model output into field-complete sections, the Risk Officer synthesis
// stage with deterministic decision rules, and the orchestrating pipeline.
package committee

import (
	"fmt"
	"strings"
)

// SectionSpec describes one generated section: who writes it, the labeled
// fields it must contain, and its bullet minimum. Adding a persona means
// adding a table entry.
type SectionSpec struct {
	Name            string   // section identifier, e.g. "BUFFETT"
	Role            string   // system/role instruction
	Format          string   // labeled-field output format block
	RequiredFields  []string // labels that must appear in the output
	MinBullets      int
	MaxOutputTokens int
}

// Personas is the fixed committee, in report order.
var Personas = []SectionSpec{
	{
		Name: "BUFFETT",
		Role: "You are Warren Buffett. Focus on business quality, economic moat, management, " +
			"intrinsic value vs price, and margin of safety. Be conservative and explainable.",
		Format: `Output format:
BUFFETT RECOMMENDATION: [BUY/HOLD/SELL]
CONVICTION LEVEL: [1-10]
TARGET ALLOCATION: [0-25%]
TIME HORIZON: [5-10+ years]
INVESTMENT THESIS: bullet points
RISK FACTORS: bullet points`,
		RequiredFields: []string{
			"BUFFETT RECOMMENDATION:", "CONVICTION LEVEL:", "TARGET ALLOCATION:",
			"TIME HORIZON:", "INVESTMENT THESIS:", "RISK FACTORS:",
		},
		MinBullets:      3,
		MaxOutputTokens: 1000,
	},
	{
		Name: "MUNGER",
		Role: "You are Charlie Munger. Apply mental models, incentives, second-order effects. " +
			"Be skeptical and emphasize what could go wrong.",
		Format: `Output format:
MUNGER ANALYSIS: [OPPORTUNITY/CAUTION/AVOID]
RISK RATING: [1-10]
CIRCLE OF COMPETENCE: [IN/OUT/BORDERLINE]
KEY MENTAL MODELS APPLIED: bullet points
CONTRARIAN INSIGHTS: bullet points`,
		RequiredFields: []string{
			"MUNGER ANALYSIS:", "RISK RATING:", "CIRCLE OF COMPETENCE:",
			"KEY MENTAL MODELS APPLIED:", "CONTRARIAN INSIGHTS:",
		},
		MinBullets:      3,
		MaxOutputTokens: 900,
	},
	{
		Name: "ACKMAN",
		Role: "You are Bill Ackman. Focus on concentrated positions, catalysts, governance, and " +
			"what would need to change for value to be unlocked.",
		Format: `Output format:
ACKMAN POSITION: [LONG/SHORT/ACTIVIST LONG]
CONVICTION LEVEL: [1-10]
CATALYST TIMELINE: [6-36 months]
TARGET POSITION SIZE: [5-20%]
ENGAGEMENT PROBABILITY: [HIGH/MEDIUM/LOW]
ACTIVIST THESIS: bullet points
CATALYSTS: bullet points`,
		RequiredFields: []string{
			"ACKMAN POSITION:", "CONVICTION LEVEL:", "CATALYST TIMELINE:",
			"TARGET POSITION SIZE:", "ENGAGEMENT PROBABILITY:", "ACTIVIST THESIS:", "CATALYSTS:",
		},
		MinBullets:      3,
		MaxOutputTokens: 900,
	},
	{
		Name: "COHEN",
		Role: "You are Steve Cohen. Trading-oriented. Focus on positioning, timing, entry/exit, " +
			"stops, catalysts, and risk control.",
		Format: `Output format:
COHEN TRADE: [LONG/SHORT/HEDGE/NO-TRADE]
CONVICTION: [1-10]
POSITION SIZE: [%]
ENTRY: levels/conditions
TAKE PROFIT: levels
STOP LOSS: levels
KEY DRIVERS: bullet points`,
		RequiredFields: []string{
			"COHEN TRADE:", "CONVICTION:", "POSITION SIZE:",
			"ENTRY:", "TAKE PROFIT:", "STOP LOSS:", "KEY DRIVERS:",
		},
		MinBullets:      3,
		MaxOutputTokens: 900,
	},
	{
		Name: "DALIO",
		Role: "You are Ray Dalio. Macro regimes, cycles, diversification, correlation, and " +
			"risk contribution. Think in scenarios.",
		Format: `Output format:
DALIO STRATEGY: [ALLOCATE/REDUCE/HEDGE/AVOID]
MACRO ENVIRONMENT SCORE: [1-10]
DIVERSIFICATION VALUE: [HIGH/MEDIUM/LOW]
RISK CONTRIBUTION: [LOW/MEDIUM/HIGH]
ECONOMIC SEASON: [GROWTH/RECESSION/REFLATION/STAGFLATION/UNKNOWN]
MACRO ANALYSIS: bullet points
PORTFOLIO FIT: bullet points`,
		RequiredFields: []string{
			"DALIO STRATEGY:", "MACRO ENVIRONMENT SCORE:", "DIVERSIFICATION VALUE:",
			"RISK CONTRIBUTION:", "ECONOMIC SEASON:", "MACRO ANALYSIS:", "PORTFOLIO FIT:",
		},
		MinBullets:      3,
		MaxOutputTokens: 900,
	},
}

// RiskOfficer is the synthesis stage's section spec.
var RiskOfficer = SectionSpec{
	Name: "RISK OFFICER",
	Role: "You are the Chief Risk Officer & Portfolio Manager. Synthesize the committee into " +
		"a single actionable decision with explicit risk controls. If data quality is weak, " +
		"reduce position sizing and confidence.",
	Format: `Output format:
PORTFOLIO DECISION: [IMPLEMENT/MODIFY/MONITOR/REJECT]
FINAL POSITION SIZE: X.X%
RISK RATING: [1-10]
EXPECTED ANNUAL RETURN: X.X% (rough estimate)
MAXIMUM EXPECTED LOSS: -X.X% (rough estimate)
COMMITTEE CONSENSUS: bullet points (who agrees/disagrees)
IMPLEMENTATION PLAN: bullet points (entry, stop, targets, monitoring)
RISK OFFICER SUMMARY: 2-3 lines`,
	RequiredFields: []string{
		"PORTFOLIO DECISION:", "FINAL POSITION SIZE:", "RISK RATING:",
		"EXPECTED ANNUAL RETURN:", "MAXIMUM EXPECTED LOSS:", "COMMITTEE CONSENSUS:",
		"IMPLEMENTATION PLAN:", "RISK OFFICER SUMMARY:",
	},
	MinBullets:      3,
	MaxOutputTokens: 1200,
}

// personaPrompt builds the user content for one persona: the shared
// preamble, the factsheet, and the persona's output format.
func personaPrompt(spec SectionSpec, factsheetText string) string {
	var sb strings.Builder
	sb.WriteString("You are given a FACTSHEET for a stock. Reason ONLY from the factsheet; ")
	sb.WriteString("do not use outside knowledge of the company. Where the factsheet is ")
	sb.WriteString("silent, write UNKNOWN rather than inventing a value.\n")
	fmt.Fprintf(&sb, "Every bullet list must contain at least %d bullet points.\n\n", spec.MinBullets)
	sb.WriteString("FACTSHEET:\n")
	sb.WriteString(factsheetText)
	sb.WriteString("\n\n")
	sb.WriteString(spec.Format)
	return sb.String()
}
