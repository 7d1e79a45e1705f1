package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lossreport/internal/model"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List report sections",
	Long:  `List the section catalog in report order, with weather relevance and whether the section is part of the review workflow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSections(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func printSections(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWEATHER\tREVIEW")
	for _, s := range model.AllSections() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Title, yesNo(s.RequiresWeather), yesNo(s.InWorkflow))
	}
	return tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
