package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
)

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <transaction-id>",
		Short: "Correct a transaction's category assignment",
		Long: `Override the category and destination account on a transaction.

When the edit changes either value, the transaction's description is recorded
as a correction so that future imports of the same description match it
directly. Submitting the values already on the transaction is a no-op and
records nothing.

Examples:
  ledgersage edit <id> --category Groceries --destination-acc Expenses:Groceries`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}

	cmd.Flags().String("category", "", "corrected category (required)")
	cmd.Flags().String("destination-acc", "", "corrected destination account")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	category, _ := cmd.Flags().GetString("category")
	destinationAcc, _ := cmd.Flags().GetString("destination-acc")

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	changed, err := eng.ApplyUserEdit(ctx, args[0], category, destinationAcc)
	if err != nil {
		return err
	}

	if !changed {
		fmt.Println(cli.InfoStyle.Render("Transaction already has those values; nothing recorded"))
		return nil
	}

	tx, err := store.GetTransactionByID(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Updated %q to %s and saved correction", tx.Description, category)))
	return nil
}
