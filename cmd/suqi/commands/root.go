package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scout-dashboard/suqi/internal/query"
	"github.com/scout-dashboard/suqi/internal/templates"
	"github.com/scout-dashboard/suqi/pkg/logger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "suqi",
	Short: "SUQI offline query resolver",
	Long: `suqi resolves business questions into SQL plans without the HTTP server.
Use it to try questions against the template corpus and to run the
evaluation dataset in CI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			return logger.Init("debug", "console", "stderr")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newEngine() (*query.Engine, error) {
	reg, err := templates.Default()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return query.NewEngine(reg), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
