package committee

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/riskdesk/internal/llm"
	"github.com/seenimoa/riskdesk/pkg/models"
)

// Check returns the list of structural violations in a draft against its
// section spec. An empty result means the draft is compliant.
func Check(spec SectionSpec, draft string) []string {
	var violations []string
	for _, field := range spec.RequiredFields {
		if !strings.Contains(draft, field) {
			violations = append(violations, fmt.Sprintf("missing required field %q", field))
		}
	}
	if n := BulletCount(draft); n < spec.MinBullets {
		violations = append(violations,
			fmt.Sprintf("needs at least %d bullet lines, found %d", spec.MinBullets, n))
	}
	return violations
}

// BulletCount counts lines that read as list bullets: "-", "*", "•" or a
// numbered "1." / "1)" prefix.
func BulletCount(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if isBulletLine(strings.TrimSpace(line)) {
			count++
		}
	}
	return count
}

func isBulletLine(line string) bool {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	// Numbered forms: digits followed by '.' or ')' and a space.
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line)-1 {
		return false
	}
	return (line[i] == '.' || line[i] == ')') && line[i+1] == ' '
}

// Validator runs the check/repair loop over a generated draft. A draft that
// passes immediately is valid; otherwise up to MaxRepairPasses repair calls
// are issued, each fed the previous draft plus the concrete violations. When
// repairs run out the last draft is kept verbatim and the section is marked
// exhausted rather than dropped.
type Validator struct {
	Provider        llm.Provider
	Temperature     float64
	MaxRepairPasses int
}

// Finalize validates a draft, repairing it if needed, and returns the
// finished section. A provider error during repair aborts the section.
func (v *Validator) Finalize(ctx context.Context, spec SectionSpec, factsheetText, draft string) (models.Section, error) {
	section := models.Section{Name: spec.Name, Text: draft, Status: models.StatusValid}

	violations := Check(spec, draft)
	if len(violations) == 0 {
		return section, nil
	}

	for pass := 1; pass <= v.MaxRepairPasses; pass++ {
		section.RepairCalls = pass
		fixed, err := v.Provider.Generate(ctx, llm.Request{
			RoleInstruction: repairRole,
			Content:         repairPrompt(spec, factsheetText, section.Text, violations),
			Temperature:     v.Temperature,
			MaxOutputTokens: spec.MaxOutputTokens,
		})
		if err != nil {
			return section, fmt.Errorf("repair pass %d for %s: %w", pass, spec.Name, err)
		}
		section.Text = fixed

		violations = Check(spec, fixed)
		if len(violations) == 0 {
			section.Status = models.StatusRepaired
			return section, nil
		}
	}

	section.Status = models.StatusExhausted
	return section, nil
}

const repairRole = "You are a meticulous copy editor for structured analyst notes. " +
	"Rewrite drafts so they contain every required labeled field and enough bullet " +
	"points, changing the substance as little as possible. Never invent data that " +
	"is not in the draft or the factsheet; write UNKNOWN for missing values."

// repairPrompt feeds the broken draft back with its concrete violations and
// the original format block.
func repairPrompt(spec SectionSpec, factsheetText, draft string, violations []string) string {
	var sb strings.Builder
	sb.WriteString("The draft below violates its required output format.\n\nVIOLATIONS:\n")
	for _, v := range violations {
		sb.WriteString("- ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	sb.WriteString("\nFACTSHEET (the only permitted data source):\n")
	sb.WriteString(factsheetText)
	sb.WriteString("\n\nREQUIRED ")
	sb.WriteString(spec.Format)
	sb.WriteString("\n\nDRAFT:\n")
	sb.WriteString(draft)
	sb.WriteString("\n\nReturn the corrected section only, no commentary.")
	return sb.String()
}
