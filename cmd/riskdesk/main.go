// riskdesk — investment committee reports for stock tickers
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/riskdesk/api"
	"github.com/seenimoa/riskdesk/internal/committee"
	"github.com/seenimoa/riskdesk/internal/config"
	"github.com/seenimoa/riskdesk/internal/llm"
	"github.com/seenimoa/riskdesk/internal/marketdata"
	"github.com/seenimoa/riskdesk/internal/sink"
	"github.com/seenimoa/riskdesk/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "riskdesk",
	Short: "riskdesk — investment committee reports for stock tickers",
	Long: `riskdesk builds a deterministic market factsheet for a ticker, runs a
committee of analyst personas over it, validates and repairs their output,
and synthesizes a risk-checked portfolio decision.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildPipeline wires the shared fetch-and-generate stack.
func buildPipeline() (*marketdata.Client, *committee.Pipeline, error) {
	if err := cfg.ValidateForGeneration(); err != nil {
		return nil, nil, err
	}
	provider, err := llm.NewFromConfig(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	client := marketdata.NewClient(cfg.Data, cfg.Committee.Headlines)
	return client, committee.NewPipeline(cfg, provider), nil
}

// runReport fetches bundles and runs the pipeline for one ticker.
func runReport(cmd *cobra.Command, ticker, benchmark string) (string, error) {
	client, pipeline, err := buildPipeline()
	if err != nil {
		return "", err
	}

	ctx := cmd.Context()
	bundle := client.FetchBundle(ctx, ticker)

	var bench *marketdata.Bundle
	if benchmark != "" && benchmark != "none" && benchmark != ticker {
		b := client.FetchBundle(ctx, benchmark)
		bench = &b
	}

	rep, err := pipeline.Run(ctx, bundle, bench)
	if err != nil {
		return "", err
	}
	return rep.Text, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("riskdesk %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Generate a committee report for a ticker",
	Long:  "Fetch market data, run the persona committee and print the report to stdout.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.ExtractTicker(args[0])
		if ticker == "" {
			return fmt.Errorf("no usable ticker in %q", args[0])
		}

		benchmark, _ := cmd.Flags().GetString("benchmark")
		if benchmark == "" {
			benchmark = cfg.Committee.Benchmark
		}

		text, err := runReport(cmd, ticker, benchmark)
		if err != nil {
			return err
		}
		return sink.StdoutSink{W: cmd.OutOrStdout()}.Post(cmd.Context(), text)
	},
}

func init() {
	analyzeCmd.Flags().String("benchmark", "", `benchmark ticker ("none" disables the benchmark block)`)
}

// --- Event Command (GitHub Actions entrypoint) ---

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Handle a GitHub issue event and reply with a report",
	Long: `Reads the webhook payload named by GITHUB_EVENT_PATH, extracts the
ticker from the triggering issue or comment, and posts the report back to
the thread as one or more comments. Meant to run inside GitHub Actions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := os.Getenv("GITHUB_EVENT_PATH")
		if path == "" {
			return fmt.Errorf("GITHUB_EVENT_PATH is not set")
		}

		ev, err := sink.ParseEventFile(path)
		if err != nil {
			return err
		}
		if !ev.Allowed(cfg.GitHub.AllowedUsers) {
			fmt.Fprintf(cmd.ErrOrStderr(), "user %q is not on the allowlist, ignoring event\n", ev.Actor)
			return nil
		}

		ticker := utils.ExtractTicker(ev.Text)
		if ticker == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "no ticker found in event text, ignoring")
			return nil
		}

		ghSink, err := sink.NewGitHubSink(cfg.GitHub, ev.IssueNumber)
		if err != nil {
			return err
		}

		ack := fmt.Sprintf("Generating investment committee report for **%s**, stand by.", ticker)
		if err := ghSink.Post(cmd.Context(), ack); err != nil {
			return fmt.Errorf("post acknowledgment: %w", err)
		}

		text, err := runReport(cmd, ticker, cfg.Committee.Benchmark)
		if err != nil {
			// Post the failure to the thread so the requester sees it.
			msg := fmt.Sprintf("Report generation for **%s** failed: %v", ticker, err)
			if postErr := ghSink.Post(cmd.Context(), msg); postErr != nil {
				return fmt.Errorf("report failed (%v) and posting the failure also failed: %w", err, postErr)
			}
			return err
		}
		return ghSink.Post(cmd.Context(), text)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting riskdesk API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  riskdesk — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:      %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Provider:   %s (model: %s)\n", cfg.LLM.Primary, cfg.LLM.Model)
		fmt.Printf("    Benchmark:      %s\n", cfg.Committee.Benchmark)
		fmt.Printf("    Repair Passes:  %d\n", cfg.Committee.MaxRepairPasses)
		fmt.Printf("    API Server:     %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  Credentials:")
		printKey("Gemini key", cfg.LLM.GeminiKey)
		printKey("OpenAI key", cfg.LLM.OpenAIKey)
		printKey("Market data key", cfg.Data.PrimaryAPIKey)
		printKey("GitHub token", cfg.GitHub.Token)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func printKey(name, value string) {
	status := "not set"
	if value != "" {
		status = "set (" + mask(value) + ")"
	}
	fmt.Printf("    %-18s %s\n", name+":", status)
}

// mask shows just enough of a secret to identify it.
func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-2:]
}
