package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/lossreport/internal/cache"
	"github.com/ppiankov/lossreport/internal/tui"
	"github.com/ppiankov/lossreport/internal/workflow"
)

var reviewOut string

// errReviewStdin is returned for "review -": the UI needs stdin for keys.
var errReviewStdin = errors.New(`review reads keystrokes from stdin, so the fact sheet cannot come from "-"; save it to a file first`)

var reviewCmd = &cobra.Command{
	Use:   "review <facts.yaml>",
	Short: "Review and accept a report section by section",
	Long: `Review opens an interactive session that drafts each report section in
order. Accept a section with 'a' or press 'r' to regenerate it with feedback.
When the last section is accepted the compiled report is written to --out.

The fact sheet may be YAML or JSON. It must be a file: the session reads
keystrokes from stdin, so "-" is rejected.

Example:
  lossreport review claim-1042.yaml --out claim-1042.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVarP(&reviewOut, "out", "o", "report.md", "output Markdown path")
}

func runReview(cmd *cobra.Command, args []string) error {
	if args[0] == "-" {
		return errReviewStdin
	}
	facts, err := loadFacts(args[0])
	if err != nil {
		return err
	}

	// The UI owns the terminal while it runs.
	a, err := newApp(nil, io.Discard, true)
	if err != nil {
		return err
	}
	machine := workflow.NewMachine(a.pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := workflow.NewSession(cache.NewSessionID(), facts)
	final, err := tea.NewProgram(tui.New(ctx, machine, session), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok {
		return errors.New("review: unexpected program state")
	}
	result := m.Session()
	if !result.IsComplete() {
		done, total := machine.Progress(result)
		fmt.Fprintf(os.Stderr, "Review stopped with %d/%d sections accepted; nothing written.\n", done, total)
		return nil
	}

	if err := os.WriteFile(reviewOut, []byte(result.Document), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("✓ Wrote report: %s\n", reviewOut)
	return nil
}
