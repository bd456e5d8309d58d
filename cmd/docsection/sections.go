package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tmackey/docsection/internal/config"
	"github.com/tmackey/docsection/internal/infer"
	"github.com/tmackey/docsection/internal/outline"
	"github.com/tmackey/docsection/internal/pdfdoc"
)

var (
	// titleStyle for the document header
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// sectionStyle for section titles
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// boxStyle for the summary box
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("81")).
			Padding(0, 1)
)

var (
	flagMaxDepth  int
	flagMaxTokens int
	flagCoverage  float64
	flagJSON      bool
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <file.pdf>",
	Short: "Decompose a PDF into content sections",
	Long: `Decompose a PDF into ordered content sections. The embedded table of
contents is used when it covers enough of the document, otherwise the
section layout is inferred from page text (requires ANTHROPIC_API_KEY).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		doc, err := pdfdoc.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer doc.Close()

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		var ai *infer.Client
		if cfg.AnthropicAPIKey != "" {
			ai = infer.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
			defer ai.Close()
		}

		coverage := flagCoverage
		if coverage <= 0 {
			coverage = cfg.MinCoverage
		}

		engine := outline.NewEngine(log)
		src := &fileSource{doc: doc, ai: ai, log: log}
		res, err := engine.Decompose(cmd.Context(), src, pdfdoc.NewEstimator(doc), doc.PageCount(), outline.Options{
			MaxDepth:    flagMaxDepth,
			MaxTokens:   flagMaxTokens,
			MinCoverage: coverage,
		})
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		renderSections(cmd, args[0], doc.PageCount(), res)
		return nil
	},
}

func renderSections(cmd *cobra.Command, path string, totalPages int, res outline.Result) {
	out := cmd.OutOrStdout()

	header := fmt.Sprintf("%s\n%s %d  %s %d-%d",
		titleStyle.Render(path),
		dimStyle.Render("Pages:"), totalPages,
		dimStyle.Render("Content:"), res.Range.StartPage, res.Range.EndPage,
	)
	fmt.Fprintln(out, boxStyle.Render(header))

	for _, sec := range res.Sections {
		indent := strings.Repeat("  ", sec.Level-1)
		fmt.Fprintf(out, "%s%s %s\n",
			indent,
			dimStyle.Render(fmt.Sprintf("%3d-%-3d", sec.StartPage, sec.EndPage)),
			sectionStyle.Render(sec.Title),
		)
	}

	skipped := len(res.Range.SkippedFront) + len(res.Range.SkippedBack)
	if skipped > 0 {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Skipped %d front/back matter entries (use --json for details)", skipped)))
	}
}

// fileSource adapts a local PDF to the outline engine's source interface.
type fileSource struct {
	doc *pdfdoc.Document
	ai  *infer.Client
	log *slog.Logger
}

func (s *fileSource) EmbeddedOutline(ctx context.Context) ([]outline.Entry, error) {
	return s.doc.EmbeddedOutline(ctx)
}

func (s *fileSource) InferOutline(ctx context.Context) ([]outline.Entry, error) {
	if s.ai == nil {
		s.log.Warn("ANTHROPIC_API_KEY not set, proceeding without inferred outline")
		return nil, nil
	}
	pages := make([]string, s.doc.PageCount())
	for i := range pages {
		text, err := s.doc.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", i, err)
		}
		pages[i] = text
	}
	return s.ai.InferOutline(ctx, pages)
}

func init() {
	sectionsCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 1, "Maximum outline depth to emit as sections")
	sectionsCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Token budget per section (0 = unlimited)")
	sectionsCmd.Flags().Float64Var(&flagCoverage, "coverage", 0, "Minimum outline coverage to trust the embedded table of contents")
	sectionsCmd.Flags().BoolVar(&flagJSON, "json", false, "Emit the full result as JSON")

	rootCmd.AddCommand(sectionsCmd)
}
