package committee

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seenimoa/riskdesk/pkg/models"
)

// Position-sizing rules applied after the Risk Officer output is validated.
// The model is instructed to follow them, but the instructions are advisory;
// these constants are what the post-check actually enforces.
const (
	lowQualitySizeCap = 0.0 // LOW data quality forces a flat position
	elevatedSizeCap   = 5.0 // ELEVATED regime caps position size, in percent
)

// synthesisPrompt assembles the Risk Officer's input: the factsheet, every
// committee section verbatim, and the hard decision rules.
func synthesisPrompt(ticker string, fs models.Factsheet, sections []models.Section) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticker under review: %s\n\nFACTSHEET:\n", ticker)
	sb.WriteString(fs.Text())
	sb.WriteString("\n\nCOMMITTEE OUTPUT:\n")
	for _, sec := range sections {
		fmt.Fprintf(&sb, "\n=== %s ===\n%s\n", sec.Name, sec.Text)
	}
	sb.WriteString("\nHARD RULES (non-negotiable):\n")
	sb.WriteString("- If DATA_QUALITY is LOW, the decision must be MONITOR or REJECT and the final position size must be 0.0%.\n")
	fmt.Fprintf(&sb, "- If VOLATILITY_REGIME is ELEVATED, the final position size must not exceed %.1f%% and the implementation plan must name a STOP LOSS.\n", elevatedSizeCap)
	sb.WriteString("- Reason only from the factsheet and the committee output above.\n\n")
	sb.WriteString(RiskOfficer.Format)
	return sb.String()
}

// FieldValue returns the trimmed remainder of the first line starting with
// the given label, or "" if no line carries it.
func FieldValue(text, label string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, label) {
			return strings.TrimSpace(trimmed[len(label):])
		}
	}
	return ""
}

// ParseDecision extracts the machine-readable decision fields from a
// validated Risk Officer section.
func ParseDecision(section models.Section) models.DecisionRecord {
	record := models.DecisionRecord{Section: section}

	verdict := strings.ToUpper(FieldValue(section.Text, "PORTFOLIO DECISION:"))
	for _, known := range []string{"IMPLEMENT", "MODIFY", "MONITOR", "REJECT"} {
		if strings.Contains(verdict, known) {
			record.Decision = known
			break
		}
	}

	if size, ok := firstFloat(FieldValue(section.Text, "FINAL POSITION SIZE:")); ok {
		record.PositionSizePct = &size
	}
	return record
}

// firstFloat scans a free-form value like "3.5% of portfolio" for its first
// numeric token.
func firstFloat(value string) (float64, bool) {
	start := -1
	for i := 0; i <= len(value); i++ {
		var c byte
		if i < len(value) {
			c = value[i]
		}
		isNum := c == '.' || c == '-' || c == '+' || (c >= '0' && c <= '9')
		if isNum && start < 0 {
			start = i
		}
		if !isNum && start >= 0 {
			if f, err := strconv.ParseFloat(value[start:i], 64); err == nil {
				return f, true
			}
			start = -1
		}
	}
	return 0, false
}

// EnforceDecisionRules applies the deterministic post-check to a parsed
// decision. Generated text is advisory; the rules here are authoritative,
// and every override is recorded so the report shows what was changed.
func EnforceDecisionRules(record *models.DecisionRecord, quality string, regime models.VolatilityRegime) {
	activeDecision := record.Decision == "IMPLEMENT" || record.Decision == "MODIFY"
	sized := record.PositionSizePct != nil && *record.PositionSizePct > 0

	if quality == "LOW" && (activeDecision || sized) {
		record.RuleOverrides = append(record.RuleOverrides, fmt.Sprintf(
			"data quality LOW: decision %q overridden to MONITOR, position size forced to %.1f%%",
			record.Decision, lowQualitySizeCap))
		record.Decision = "MONITOR"
		size := lowQualitySizeCap
		record.PositionSizePct = &size
		record.Text = rewriteField(record.Text, "PORTFOLIO DECISION:", "MONITOR (rule override)")
		record.Text = rewriteField(record.Text, "FINAL POSITION SIZE:", fmt.Sprintf("%.1f%% (rule override)", size))
		return
	}

	if regime == models.RegimeElevated && activeDecision {
		if record.PositionSizePct != nil && *record.PositionSizePct > elevatedSizeCap {
			record.RuleOverrides = append(record.RuleOverrides, fmt.Sprintf(
				"volatility regime ELEVATED: position size %.1f%% capped at %.1f%%",
				*record.PositionSizePct, elevatedSizeCap))
			size := elevatedSizeCap
			record.PositionSizePct = &size
			record.Text = rewriteField(record.Text, "FINAL POSITION SIZE:", fmt.Sprintf("%.1f%% (rule override)", size))
		}
		if !strings.Contains(strings.ToUpper(record.Text), "STOP LOSS") {
			record.RuleOverrides = append(record.RuleOverrides,
				"volatility regime ELEVATED: implementation plan names no stop loss")
		}
	}
}

// rewriteField replaces the value of the first line carrying the label,
// leaving the rest of the text untouched.
func rewriteField(text, label, newValue string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), label) {
			lines[i] = label + " " + newValue
			break
		}
	}
	return strings.Join(lines, "\n")
}
