package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/distrust/internal/model"
	"github.com/ppiankov/distrust/internal/pipeline"
	"github.com/ppiankov/distrust/internal/report"
)

var (
	outJSON     string
	outMD       string
	verifiedArg string
	nowArg      string
	embedFlag   bool
	timeout     time.Duration
	noFooter    bool
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Score one evidence file",
	Long: `Score computes the epistemic distrust score of a claim from an evidence
file (YAML or JSON) and prints the verdict, the four components and the
diagnostic signals.

Example:
  distrust score claim.yaml
  distrust score claim.yaml --json report.json --md report.md
  distrust score claim.yaml --verified false --now 2025-11-29T12:00:00Z
  distrust score claim.yaml --embed --json -`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&outJSON, "json", "", "write JSON report to path ('-' for stdout)")
	scoreCmd.Flags().StringVar(&outMD, "md", "", "write Markdown report to path")
	scoreCmd.Flags().StringVar(&verifiedArg, "verified", "", "override ground truth: true, false or unknown")
	scoreCmd.Flags().StringVar(&nowArg, "now", "", "reference time for temporal decay (RFC3339)")
	scoreCmd.Flags().BoolVar(&embedFlag, "embed", false, "fill missing embeddings (provider from config, default openai)")
	scoreCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	scoreCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runScore(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScoreFlags(cfg)

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	set, err := p.Load(path)
	if err != nil {
		return err
	}
	if err := applyOverrides(set, verifiedArg, nowArg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Scoring: %s (%d evidence items)\n", path, len(set.Evidence))
	}

	rep, err := p.ScoreSet(ctx, set, path)
	if err != nil {
		return fmt.Errorf("score failed: %w", err)
	}

	renderer := report.NewRenderer(cmd.OutOrStdout(), cfg.Output)

	if outJSON != "" && outJSON != "-" {
		if err := renderer.RenderJSON(rep, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(rep, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	if outJSON == "-" {
		return renderer.WriteJSON(cmd.OutOrStdout(), rep)
	}

	renderer.RenderSummary(rep)
	return nil
}

// applyScoreFlags folds score/batch flags into the loaded config
func applyScoreFlags(cfg *model.Config) {
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if embedFlag && cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// applyOverrides replaces the file's ground truth and reference time
func applyOverrides(set *model.EvidenceSet, verified, now string) error {
	switch strings.ToLower(strings.TrimSpace(verified)) {
	case "":
	case "true":
		v := true
		set.Verified = &v
	case "false":
		v := false
		set.Verified = &v
	case "unknown", "null":
		set.Verified = nil
	default:
		return fmt.Errorf("invalid --verified %q (want true, false or unknown)", verified)
	}

	if now != "" {
		t, err := time.Parse(time.RFC3339, now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		set.Now = &t
	}

	return nil
}
