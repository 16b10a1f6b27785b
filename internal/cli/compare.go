package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/distrust/internal/authority"
	"github.com/ppiankov/distrust/internal/baseline"
	"github.com/ppiankov/distrust/internal/evidence"
	"github.com/ppiankov/distrust/internal/model"
	"github.com/ppiankov/distrust/internal/report"
	"github.com/ppiankov/distrust/internal/score"
)

var (
	compareJSON bool
	exportDir   string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare [file...]",
	Short: "Compare the engine with the single-factor log baseline",
	Long: `Compare scores evidence with both the distrust engine and the older
single-factor formula alpha·(ln(1-w)+H)². Without files it runs five
built-in scenarios: a government press release, a media echo chamber,
independent researchers, an astroturfed campaign, and an old government
claim against recent evidence.

Example:
  distrust compare
  distrust compare a.yaml b.json --json
  distrust compare --export ./scenarios`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print rows as JSON")
	compareCmd.Flags().StringVar(&exportDir, "export", "", "write the built-in scenarios as evidence files to this directory")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := score.ValidateConfig(cfg.Engine); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	engine := score.NewEngine(cfg.Engine)

	var scenarios []baseline.Scenario
	if len(args) == 0 {
		scenarios = baseline.DefaultScenarios(time.Now().UTC())
	}
	loader := evidence.NewLoader(authority.NewClassifier(&cfg.Authority))
	for _, path := range args {
		set, err := loader.Load(path)
		if err != nil {
			return err
		}
		if err := score.Validate(set.Evidence); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		scenarios = append(scenarios, baseline.FromEvidenceSet(filepath.Base(path), set))
	}

	if exportDir != "" {
		if err := exportScenarios(exportDir, scenarios); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d scenarios to %s\n", len(scenarios), exportDir)
	}

	rows := baseline.Compare(engine, scenarios)

	if compareJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	report.NewRenderer(cmd.OutOrStdout(), cfg.Output).RenderComparison(rows)
	return nil
}

// exportScenarios writes each scenario as a loadable evidence file
func exportScenarios(dir string, scenarios []baseline.Scenario) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	names := make(map[string]int)
	for _, sc := range scenarios {
		now := sc.Now
		set := &model.EvidenceSet{
			Claim:    sc.Name,
			Evidence: sc.Evidence,
		}
		if !now.IsZero() {
			set.Now = &now
		}
		switch sc.Verification {
		case model.VerifiedTrue:
			v := true
			set.Verified = &v
		case model.VerifiedFalse:
			v := false
			set.Verified = &v
		}

		data, err := evidence.Marshal(set)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", sc.Name, err)
		}

		path := filepath.Join(dir, uniqueName(names, reportSlug(sc.Name))+".yaml")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
