package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askSQLOnly bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Resolve one question and print the plan",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSQLOnly, "sql", false, "print only the generated SQL")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question is empty")
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	result := engine.Process(question)
	if askSQLOnly {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), result.SQL)
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
