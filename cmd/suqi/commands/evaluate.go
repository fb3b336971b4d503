package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scout-dashboard/suqi/internal/evaluation"
	"github.com/scout-dashboard/suqi/internal/storage/sqlite"
	"github.com/scout-dashboard/suqi/pkg/config"
)

var (
	evalDataset     string
	evalMinAccuracy float64
	evalPersist     bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run an evaluation dataset and print the report",
	Long: `Runs every question in the dataset through the resolver and compares the
method and template with the expected ones. Without --dataset the built-in
regression set is used. --min-accuracy turns the run into a pass/fail gate.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalDataset, "dataset", "d", "", "YAML or JSON dataset file")
	evaluateCmd.Flags().Float64Var(&evalMinAccuracy, "min-accuracy", 0, "fail when accuracy is below this value")
	evaluateCmd.Flags().BoolVar(&evalPersist, "persist", false, "record the run in the configured SQLite database")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dataset := evaluation.DefaultDataset()
	if evalDataset != "" {
		f, err := os.Open(evalDataset)
		if err != nil {
			return fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()

		dataset, err = evaluation.LoadDataset(f)
		if err != nil {
			return err
		}
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	var store evaluation.RunStore
	if evalPersist {
		client, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		store = client
	}

	report, err := evaluation.NewEvaluator(engine, store).RunDatasetEvaluation(ctx, dataset)
	if err != nil {
		return err
	}

	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if report.Accuracy < evalMinAccuracy {
		return fmt.Errorf("accuracy %.3f below required %.3f (%d misses, %d method-only)",
			report.Accuracy, evalMinAccuracy, report.MissCount, report.MethodOnlyCount)
	}
	return nil
}

func openStore(ctx context.Context) (*sqlite.Client, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	client, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return client, nil
}
