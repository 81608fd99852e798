package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
)

func rescoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Re-score stored transactions against the current catalogs",
		Long: `Re-run semantic matching over stored transactions.

Useful after adding categories or recording corrections: the label catalog
is rebuilt and re-embedded once, then every targeted transaction gets a
fresh category, destination account, and score.

Examples:
  ledgersage rescore --project <id>
  ledgersage rescore --transaction <id>`,
		RunE: runRescore,
	}

	cmd.Flags().String("project", "", "re-score every transaction in a project")
	cmd.Flags().String("transaction", "", "re-score a single transaction")
	cmd.MarkFlagsOneRequired("project", "transaction")
	cmd.MarkFlagsMutuallyExclusive("project", "transaction")

	return cmd
}

func runRescore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	projectID, _ := cmd.Flags().GetString("project")
	transactionID, _ := cmd.Flags().GetString("transaction")

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if transactionID != "" {
		if err := eng.RescoreTransaction(ctx, transactionID); err != nil {
			return err
		}
		tx, err := store.GetTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.Scored() {
			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Re-scored %q: %s (score %s)", tx.Description, tx.Category, tx.Score.Decimal.StringFixed(4))))
		} else {
			fmt.Println(cli.FormatWarning(fmt.Sprintf("%q left unscored", tx.Description)))
		}
		return nil
	}

	transactions, err := store.GetTransactionsByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		fmt.Println(cli.FormatWarning("Project has no transactions"))
		return nil
	}

	bar := newProgressBar(len(transactions), "Re-scoring transactions...")
	eng.OnProgress = func(done, total int) { _ = bar.Set(done) }

	stats, err := eng.RescoreProject(ctx, projectID)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Re-scored %d transactions (%d matched, %d below threshold, %d failed)",
		stats.Total, stats.Matched, stats.Skipped, stats.Failed)))
	return nil
}
