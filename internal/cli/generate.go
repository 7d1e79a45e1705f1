package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/pipeline"
	"github.com/ppiankov/lossreport/internal/prompt"
)

var (
	generateFacts    string
	generateFeedback string
	generateJSON     bool
	generatePrompt   bool
	generateTimeout  time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate <section>",
	Short: "Generate a single report section",
	Long: `Generate drafts one section from a fact sheet and prints it.

With --prompt the assembled instruction is printed instead and no provider
is called. Run 'lossreport sections' for the list of section ids.

Example:
  lossreport generate meteorologist --facts claim-1042.yaml
  lossreport generate background --facts claim-1042.yaml --feedback "mention the detached garage"
  lossreport generate conclusions --facts claim-1042.yaml --prompt`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFacts, "facts", "f", "", "fact sheet path (YAML or JSON, - for stdin)")
	generateCmd.Flags().StringVar(&generateFeedback, "feedback", "", "additional reviewer instructions")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print the full response as JSON")
	generateCmd.Flags().BoolVar(&generatePrompt, "prompt", false, "print the assembled instruction without calling the provider")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 3*time.Minute, "overall timeout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	section := args[0]

	var facts model.FactSheet
	if generateFacts != "" {
		var err error
		if facts, err = loadFacts(generateFacts); err != nil {
			return err
		}
	}

	a, err := newApp(nil, os.Stderr, !generatePrompt)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	if generatePrompt {
		return writePrompt(ctx, os.Stdout, a.pipeline, section, facts, generateFeedback)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Generating %q with %s...\n", section, a.provider.Name())
	}

	resp, err := a.pipeline.GenerateSection(ctx, pipeline.SectionRequest{
		Section:            section,
		Facts:              facts,
		CustomInstructions: generateFeedback,
	})
	if err != nil {
		return err
	}

	if generateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Println(resp.Section)
	return nil
}

// writePrompt prints the instruction the provider would receive, including
// any weather the section is enriched with.
func writePrompt(ctx context.Context, out io.Writer, p *pipeline.Pipeline, section string, facts model.FactSheet, feedback string) error {
	w := p.Weather(ctx, section, facts)
	_, err := fmt.Fprintln(out, prompt.Build(section, facts, w, feedback))
	return err
}
