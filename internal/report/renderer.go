package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/distrust/internal/baseline"
	"github.com/ppiankov/distrust/internal/model"
)

const footer = "_Distrust scores measure provenance and coordination signals. They do not decide whether a claim is true._"

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	out           io.Writer
	includeFooter bool
	showSignals   bool
}

// NewRenderer creates a renderer whose terminal output goes to out
func NewRenderer(out io.Writer, opts model.OutputConfig) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{
		out:           out,
		includeFooter: opts.IncludeFooter,
		showSignals:   opts.ShowSignals,
	}
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return r.WriteJSON(w, report)
	})
}

// WriteJSON writes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return r.WriteMarkdown(w, report)
	})
}

// WriteMarkdown writes the report as Markdown
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder
	res := report.Result

	fmt.Fprintf(&b, "# Distrust Report: %s\n\n", report.Claim)
	if report.Source != "" {
		fmt.Fprintf(&b, "**Source:** `%s`  \n", report.Source)
	}
	fmt.Fprintf(&b, "**Scored at:** %s  \n", report.ScoredAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Reference time:** %s  \n", report.Now.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Verified:** %s\n\n", report.Verified)

	b.WriteString("## Score\n\n")
	fmt.Fprintf(&b, "**Distrust score:** %.4f (%s)\n\n", res.DistrustScore, res.Verdict)
	fmt.Fprintf(&b, "- Evidence items: %d\n", res.SourceCount)
	fmt.Fprintf(&b, "- Unique sources: %d\n", res.UniqueSources)
	fmt.Fprintf(&b, "- Combined (before alpha): %.4f\n", res.Combined)
	if res.Override {
		b.WriteString("- Astroturfing floor applied\n")
	}
	b.WriteString("\n")

	if len(res.Components) > 0 {
		b.WriteString("### Components\n\n")
		b.WriteString("| Component | Value |\n|---|---|\n")
		for _, name := range model.ComponentOrder {
			if v, ok := res.Component(name); ok {
				fmt.Fprintf(&b, "| %s | %.4f |\n", name, v)
			}
		}
		b.WriteString("\n")
	}

	if r.showSignals && len(res.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range res.Signals {
			fmt.Fprintf(&b, "- %s **%s**: %s\n", severityIcon(s.Severity), s.Type, s.Description)
		}
		b.WriteString("\n")
	}

	if len(report.Evidence) > 0 {
		b.WriteString("## Evidence\n\n")
		b.WriteString("| # | Source | Authority | Timestamp | Embedding | Content |\n|---|---|---|---|---|---|\n")
		for i, ev := range report.Evidence {
			emb := "-"
			if ev.HasEmbedding() {
				emb = fmt.Sprintf("%d-dim", len(ev.Embedding))
			}
			fmt.Fprintf(&b, "| %d | %s | %.2f | %s | %s | %s |\n",
				i+1, escapeCell(ev.SourceID), ev.AuthorityWeight,
				ev.Timestamp.Format("2006-01-02"), emb, escapeCell(truncate(ev.Content, 80)))
		}
		b.WriteString("\n")
	}

	if report.Embedding != nil {
		b.WriteString("## Embeddings\n\n")
		fmt.Fprintf(&b, "- Provider: %s\n", report.Embedding.Provider)
		if report.Embedding.Model != "" {
			fmt.Fprintf(&b, "- Model: %s\n", report.Embedding.Model)
		}
		fmt.Fprintf(&b, "- Filled: %d\n", report.Embedding.Filled)
		if report.Embedding.Error != "" {
			fmt.Fprintf(&b, "- Error: %s (content fallback used)\n", report.Embedding.Error)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString(footer + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(report *model.Report) {
	res := report.Result

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(r.out, "  %s\n", report.Claim)
	fmt.Fprintln(r.out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  Distrust score:  %.4f\n", res.DistrustScore)
	fmt.Fprintf(r.out, "  Verdict:         %s\n", res.Verdict)
	fmt.Fprintf(r.out, "  Evidence:        %d items, %d unique sources\n", res.SourceCount, res.UniqueSources)
	if report.Verified != model.VerificationUnknown.String() {
		fmt.Fprintf(r.out, "  Verified:        %s\n", report.Verified)
	}
	fmt.Fprintln(r.out)

	if len(res.Components) > 0 {
		fmt.Fprintln(r.out, "  Components:")
		for _, name := range model.ComponentOrder {
			if v, ok := res.Component(name); ok {
				fmt.Fprintf(r.out, "    %-20s %.4f\n", name, v)
			}
		}
		fmt.Fprintln(r.out)
	}

	if r.showSignals && len(res.Signals) > 0 {
		fmt.Fprintln(r.out, "  Signals:")
		for _, s := range res.Signals {
			fmt.Fprintf(r.out, "    %s %s\n", severityIcon(s.Severity), s.Description)
		}
		fmt.Fprintln(r.out)
	}
}

// RenderComparison prints the baseline vs engine table
func (r *Renderer) RenderComparison(rows []baseline.Row) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %-55s %10s %8s  %s\n", "Scenario", "Baseline", "Score", "Verdict")
	fmt.Fprintf(r.out, "  %s\n", strings.Repeat("─", 95))
	for _, row := range rows {
		verdict := string(row.Verdict)
		if row.Override {
			verdict += " (astroturfing)"
		}
		fmt.Fprintf(r.out, "  %-55s %10.4f %8.4f  %s\n", truncate(row.Name, 55), row.Baseline, row.Score, verdict)
	}
	fmt.Fprintln(r.out)

	for _, row := range rows {
		if len(row.Components) == 0 {
			continue
		}
		parts := make([]string, 0, len(model.ComponentOrder))
		for _, name := range model.ComponentOrder {
			if v, ok := row.Components[name]; ok {
				parts = append(parts, fmt.Sprintf("%s=%.4f", name, v))
			}
		}
		fmt.Fprintf(r.out, "  %s\n    %s\n", row.Name, strings.Join(parts, " "))
	}
	fmt.Fprintln(r.out)
}

func severityIcon(sev model.SignalSeverity) string {
	switch sev {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "•"
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// writeFile creates parent directories and writes through fn
func writeFile(path string, fn func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return fn(f)
}
