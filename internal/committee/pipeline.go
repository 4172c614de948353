package committee

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/riskdesk/internal/config"
	"github.com/seenimoa/riskdesk/internal/factsheet"
	"github.com/seenimoa/riskdesk/internal/llm"
	"github.com/seenimoa/riskdesk/internal/marketdata"
	"github.com/seenimoa/riskdesk/internal/report"
	"github.com/seenimoa/riskdesk/internal/stats"
	"github.com/seenimoa/riskdesk/pkg/models"
)

// Pipeline runs the full report flow for one ticker: series extraction,
// statistics, factsheet, concurrent persona generation, validation/repair,
// Risk Officer synthesis, deterministic decision rules, and assembly.
// Degraded data never aborts a run; only provider failures do.
type Pipeline struct {
	cfg       *config.Config
	provider  llm.Provider
	validator *Validator
	personas  []SectionSpec
	synthesis SectionSpec
}

// NewPipeline wires a pipeline from configuration and a generation provider.
func NewPipeline(cfg *config.Config, provider llm.Provider) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		provider: provider,
		validator: &Validator{
			Provider:        provider,
			Temperature:     cfg.LLM.Temperature,
			MaxRepairPasses: cfg.Committee.MaxRepairPasses,
		},
		personas:  Personas,
		synthesis: RiskOfficer,
	}
}

// Run produces the committee report for the subject bundle. The benchmark
// bundle is optional; without it the factsheet simply omits the benchmark
// and relative blocks.
func (p *Pipeline) Run(ctx context.Context, bundle marketdata.Bundle, bench *marketdata.Bundle) (*models.Report, error) {
	series := marketdata.ExtractSeries(bundle)
	subject := stats.Compute(series)

	in := factsheet.Input{
		Ticker:  bundle.Ticker,
		Details: bundle.Details,
		Subject: subject,
	}
	if bench != nil {
		benchSeries := marketdata.ExtractSeries(*bench)
		benchRec := stats.Compute(benchSeries)
		in.Bench = &benchRec
		in.BenchTicker = bench.Ticker
		in.Relative = stats.Relative(series, benchSeries)
	}
	fs := factsheet.Build(in)
	log.Printf("committee: %s factsheet ready (quality=%s, source=%s, n=%d)",
		bundle.Ticker, fs.DataQuality(), series.Source, series.Len())

	sections, err := p.runPersonas(ctx, fs)
	if err != nil {
		return nil, fmt.Errorf("generation stage: %w", err)
	}

	decision, err := p.runSynthesis(ctx, bundle.Ticker, fs, sections, subject.Regime)
	if err != nil {
		return nil, fmt.Errorf("synthesis stage: %w", err)
	}

	rep := report.Assemble(report.Input{
		Ticker:    bundle.Ticker,
		Factsheet: fs,
		Decision:  decision,
		Sections:  sections,
		Headlines: bundle.Headlines,
		Regime:    subject.Regime,
		Source:    series.Source,
		Benchmark: in.BenchTicker,
	})
	return rep, nil
}

// runPersonas generates and finalizes every persona section concurrently.
// Results land at the persona's table index so the report order is stable
// regardless of completion order.
func (p *Pipeline) runPersonas(ctx context.Context, fs models.Factsheet) ([]models.Section, error) {
	sections := make([]models.Section, len(p.personas))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range p.personas {
		i, spec := i, spec
		g.Go(func() error {
			draft, err := p.provider.Generate(gctx, llm.Request{
				RoleInstruction: spec.Role,
				Content:         personaPrompt(spec, fs.Text()),
				Temperature:     p.cfg.LLM.Temperature,
				MaxOutputTokens: spec.MaxOutputTokens,
			})
			if err != nil {
				return fmt.Errorf("persona %s: %w", spec.Name, err)
			}
			section, err := p.validator.Finalize(gctx, spec, fs.Text(), draft)
			if err != nil {
				return fmt.Errorf("persona %s: %w", spec.Name, err)
			}
			if section.Status != models.StatusValid {
				log.Printf("committee: %s section %s after %d repair call(s)",
					spec.Name, section.Status, section.RepairCalls)
			}
			sections[i] = section
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}

// runSynthesis produces the Risk Officer decision from the committee output
// and applies the deterministic decision rules to the validated result.
func (p *Pipeline) runSynthesis(ctx context.Context, ticker string, fs models.Factsheet, sections []models.Section, regime models.VolatilityRegime) (models.DecisionRecord, error) {
	draft, err := p.provider.Generate(ctx, llm.Request{
		RoleInstruction: p.synthesis.Role,
		Content:         synthesisPrompt(ticker, fs, sections),
		Temperature:     p.cfg.LLM.Temperature,
		MaxOutputTokens: p.synthesis.MaxOutputTokens,
	})
	if err != nil {
		return models.DecisionRecord{}, err
	}

	section, err := p.validator.Finalize(ctx, p.synthesis, fs.Text(), draft)
	if err != nil {
		return models.DecisionRecord{}, err
	}

	decision := ParseDecision(section)
	EnforceDecisionRules(&decision, fs.DataQuality(), regime)
	for _, override := range decision.RuleOverrides {
		log.Printf("committee: %s rule override: %s", ticker, override)
	}
	return decision, nil
}
