package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the template corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCATEGORY\tCONFIDENCE\tPARAMETERS")
		for _, t := range engine.Registry().All() {
			params := make([]string, 0, len(t.Parameters))
			for _, p := range t.Parameters {
				params = append(params, string(p))
			}
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", t.ID, t.Category, t.Confidence, strings.Join(params, ","))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
