package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/dataflows"
	"github.com/dyike/coveredcall/internal/graph"
	"github.com/dyike/coveredcall/internal/llm"
	"github.com/dyike/coveredcall/internal/output"
	"github.com/dyike/coveredcall/models"
)

// Version is stamped at build time via
// -ldflags "-X github.com/dyike/coveredcall/internal/cli.Version=...".
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "coveredcall",
		Short: "Covered-call fundamentals analyzer",
		Long: `Analyzes a ticker's fundamentals and recommends a covered-call posture.
A deterministic scorer always runs; LLM-assisted modes add a second opinion,
a divergence check, and an optional bull/bear debate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.EnsureDirectories()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, err := PromptForTicker()
			if err != nil {
				return err
			}
			mode, err := PromptForMode()
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, ticker, analyzeOptions{mode: mode})
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	return rootCmd
}

type analyzeOptions struct {
	mode        string
	forceDebate bool
	trace       bool
	format      string
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Run covered-call fundamentals analysis for a ticker",
		Long: `Run the fundamentals workflow for a given stock ticker symbol.
Example: coveredcall analyze AAPL --mode=llm --force-debate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ticker string
			var err error
			if len(args) == 1 {
				ticker = args[0]
			} else {
				ticker, err = PromptForTicker()
				if err != nil {
					return err
				}
			}
			return runAnalyze(cmd.Context(), cfg, ticker, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "deterministic", "Analysis mode: deterministic, llm, or agentic")
	cmd.Flags().BoolVar(&opts.forceDebate, "force-debate", false, "Run the bull/bear debate even without material divergence")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Emit per-node trace records on stderr")
	cmd.Flags().StringVar(&opts.format, "output", "json", "Output format: json or pretty")
	cmd.Flags().StringVar(&cfg.FundamentalsProvider, "fundamentals-provider", cfg.FundamentalsProvider, "Fundamentals data source: stub, yahoo, or finnhub")
	cmd.Flags().StringVar(&cfg.LLMProvider, "llm-provider", cfg.LLMProvider, "Completion backend: openai, deepseek, mock, or none")
	cmd.Flags().StringVar(&cfg.LLMModel, "llm-model", cfg.LLMModel, "Completion model name")
	cmd.Flags().StringVar(&cfg.LLMBaseURL, "llm-base-url", cfg.LLMBaseURL, "OpenAI-compatible base URL")
	cmd.Flags().IntVar(&cfg.MaxAgenticRounds, "agentic-rounds", cfg.MaxAgenticRounds, "Round budget for the agentic loop")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("coveredcall %s\n", Version)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	return configCmd
}

// runAnalyze executes the main analysis workflow
func runAnalyze(ctx context.Context, cfg *config.Config, ticker string, opts analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := dataflows.ValidateSymbol(ticker); err != nil {
		return err
	}
	mode, err := models.NormalizeMode(opts.mode)
	if err != nil {
		return err
	}
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "pretty" {
		return fmt.Errorf("unknown output format: %q", opts.format)
	}
	cfg.Trace = cfg.Trace || opts.trace

	ch := output.Std(cfg.Trace)
	defer ch.Sync()

	provider, err := dataflows.NewProvider(cfg)
	if err != nil {
		return err
	}

	comp, err := llm.NewCompleter(ctx, cfg)
	if err != nil {
		// Assisted modes degrade to deterministic-only when the backend
		// cannot be constructed; the workflow records the degradation.
		ch.Degraded(consts.NodeStart, err)
		comp = nil
	}

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	wf := graph.NewWorkflow(cfg, provider, comp, ch)
	outcome := wf.Run(runCtx, ticker, mode, opts.forceDebate)

	if format == "pretty" && !outcome.Fatal {
		renderReport(outcome.Doc.FundamentalsReport)
	} else if err := ch.WriteResult(outcome.Doc); err != nil {
		return err
	}

	if outcome.Fatal {
		return errFatalRun
	}
	return nil
}

func showConfig(cfg *config.Config) {
	fmt.Printf("Fundamentals provider: %s\n", cfg.FundamentalsProvider)
	fmt.Printf("Cache enabled:         %t (%s)\n", cfg.CacheEnabled, cfg.DataCacheDir)
	fmt.Printf("LLM provider:          %s\n", cfg.LLMProvider)
	fmt.Printf("LLM model:             %s\n", cfg.LLMModel)
	fmt.Printf("LLM timeout:           %s\n", cfg.LLMTimeout)
	fmt.Printf("Materiality threshold: %.2f\n", cfg.MaterialityThreshold)
	fmt.Printf("Min action confidence: %.2f\n", cfg.MinActionConfidence)
	fmt.Printf("Max agentic rounds:    %d\n", cfg.MaxAgenticRounds)
}
