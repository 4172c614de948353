package committee

import (
	"strings"
	"testing"

	"github.com/seenimoa/riskdesk/pkg/models"
)

func riskOfficerDraft(decision, size string) string {
	return "PORTFOLIO DECISION: " + decision + "\n" +
		"FINAL POSITION SIZE: " + size + "\n" +
		"RISK RATING: 6/10\n" +
		"EXPECTED ANNUAL RETURN: 12.0%\n" +
		"MAXIMUM EXPECTED LOSS: -20.0%\n" +
		"COMMITTEE CONSENSUS:\n- Buffett agrees\n- Munger dissents\n- Dalio hedges\n" +
		"IMPLEMENTATION PLAN:\n- enter gradually\n- stop loss at -15%\n- review monthly\n" +
		"RISK OFFICER SUMMARY: proceed with discipline.\n"
}

func TestFieldValue(t *testing.T) {
	text := "HEADER\nPORTFOLIO DECISION: IMPLEMENT now\nother"
	if got := FieldValue(text, "PORTFOLIO DECISION:"); got != "IMPLEMENT now" {
		t.Errorf("FieldValue = %q", got)
	}
	if got := FieldValue(text, "MISSING:"); got != "" {
		t.Errorf("FieldValue for absent label = %q", got)
	}
}

func TestParseDecision(t *testing.T) {
	section := models.Section{Name: "RISK OFFICER", Text: riskOfficerDraft("IMPLEMENT", "3.5% of book")}
	record := ParseDecision(section)
	if record.Decision != "IMPLEMENT" {
		t.Errorf("Decision = %q", record.Decision)
	}
	if record.PositionSizePct == nil || *record.PositionSizePct != 3.5 {
		t.Errorf("PositionSizePct = %v", record.PositionSizePct)
	}
}

func TestParseDecisionUnparseable(t *testing.T) {
	record := ParseDecision(models.Section{Text: "free prose with no labels"})
	if record.Decision != "" || record.PositionSizePct != nil {
		t.Errorf("record = %+v, want empty decision fields", record)
	}
}

func TestFirstFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5%", 3.5, true},
		{"about 10% of the book", 10, true},
		{"-2.5%", -2.5, true},
		{"0.0%", 0, true},
		{"none", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := firstFloat(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("firstFloat(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEnforceRulesLowQualityOverridesActiveDecision(t *testing.T) {
	record := ParseDecision(models.Section{Text: riskOfficerDraft("IMPLEMENT", "5.0%")})
	EnforceDecisionRules(&record, "LOW", models.RegimeUnknown)

	if record.Decision != "MONITOR" {
		t.Errorf("Decision = %q, want MONITOR", record.Decision)
	}
	if record.PositionSizePct == nil || *record.PositionSizePct != 0 {
		t.Errorf("PositionSizePct = %v, want 0", record.PositionSizePct)
	}
	if len(record.RuleOverrides) != 1 {
		t.Fatalf("RuleOverrides = %v", record.RuleOverrides)
	}
	// The rewritten text must show the override where the model's claim was.
	if !strings.Contains(record.Text, "PORTFOLIO DECISION: MONITOR (rule override)") {
		t.Errorf("decision line not rewritten:\n%s", record.Text)
	}
	if !strings.Contains(record.Text, "FINAL POSITION SIZE: 0.0% (rule override)") {
		t.Errorf("size line not rewritten:\n%s", record.Text)
	}
}

func TestEnforceRulesLowQualityPassiveDecisionUntouched(t *testing.T) {
	record := ParseDecision(models.Section{Text: riskOfficerDraft("MONITOR", "0.0%")})
	original := record.Text
	EnforceDecisionRules(&record, "LOW", models.RegimeUnknown)

	if len(record.RuleOverrides) != 0 {
		t.Errorf("RuleOverrides = %v, want none", record.RuleOverrides)
	}
	if record.Text != original {
		t.Error("text was rewritten without cause")
	}
}

func TestEnforceRulesElevatedRegimeCapsSize(t *testing.T) {
	record := ParseDecision(models.Section{Text: riskOfficerDraft("IMPLEMENT", "12.0%")})
	EnforceDecisionRules(&record, "OK", models.RegimeElevated)

	if record.PositionSizePct == nil || *record.PositionSizePct != elevatedSizeCap {
		t.Errorf("PositionSizePct = %v, want %v", record.PositionSizePct, elevatedSizeCap)
	}
	if len(record.RuleOverrides) != 1 {
		t.Errorf("RuleOverrides = %v", record.RuleOverrides)
	}
	if record.Decision != "IMPLEMENT" {
		t.Errorf("Decision = %q, cap must not change the verdict", record.Decision)
	}
}

func TestEnforceRulesElevatedRegimeFlagsMissingStopLoss(t *testing.T) {
	text := "PORTFOLIO DECISION: IMPLEMENT\nFINAL POSITION SIZE: 3.0%\nIMPLEMENTATION PLAN:\n- buy\n"
	record := ParseDecision(models.Section{Text: text})
	EnforceDecisionRules(&record, "OK", models.RegimeElevated)

	if len(record.RuleOverrides) != 1 || !strings.Contains(record.RuleOverrides[0], "stop loss") {
		t.Errorf("RuleOverrides = %v", record.RuleOverrides)
	}
}

func TestEnforceRulesOKQualityCalmRegimeNoOverrides(t *testing.T) {
	record := ParseDecision(models.Section{Text: riskOfficerDraft("IMPLEMENT", "12.0%")})
	EnforceDecisionRules(&record, "OK", models.RegimeCalm)
	if len(record.RuleOverrides) != 0 {
		t.Errorf("RuleOverrides = %v, want none", record.RuleOverrides)
	}
}

func TestSynthesisPromptCarriesSectionsAndRules(t *testing.T) {
	fs := models.Factsheet{Lines: []string{"TICKER: TSLA", "DATA_QUALITY: OK (n=12, source=primary-aggregates)"}}
	sections := []models.Section{
		{Name: "BUFFETT", Text: "buffett text"},
		{Name: "MUNGER", Text: "munger text"},
	}
	prompt := synthesisPrompt("TSLA", fs, sections)
	for _, want := range []string{
		"=== BUFFETT ===", "buffett text",
		"=== MUNGER ===", "munger text",
		"HARD RULES", "PORTFOLIO DECISION:", "TICKER: TSLA",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("synthesis prompt missing %q", want)
		}
	}
}
