package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List or clear a project's transactions",
	}

	cmd.AddCommand(transactionsListCmd())
	cmd.AddCommand(transactionsClearCmd())

	return cmd
}

func transactionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, _ := cmd.Flags().GetString("project")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := store.GetTransactionsByProject(ctx, projectID)
			if err != nil {
				return err
			}

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions in project"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, cli.HeaderStyle.Render("DATE")+"\t"+
				cli.HeaderStyle.Render("DESCRIPTION")+"\t"+
				cli.HeaderStyle.Render("AMOUNT")+"\t"+
				cli.HeaderStyle.Render("CATEGORY")+"\t"+
				cli.HeaderStyle.Render("SCORE")+"\t"+
				cli.HeaderStyle.Render("ID"))
			fmt.Fprintln(w, "----\t-----------\t------\t--------\t-----\t--")

			for _, tx := range transactions {
				score := "-"
				if tx.Scored() {
					score = tx.Score.Decimal.StringFixed(4)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.Date.Format("2006-01-02"), tx.Description, tx.Amount, tx.Category, score, tx.ID)
			}

			return w.Flush()
		},
	}

	cmd.Flags().String("project", "", "project to list (required)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func transactionsClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete a project's transactions",
		Long: `Delete every transaction in a project, optionally restricted to those
imported from a single source asset. Categories and corrections are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, _ := cmd.Flags().GetString("project")
			assetName, _ := cmd.Flags().GetString("source-asset")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			deleted, err := store.DeleteTransactionsByProject(ctx, projectID, assetName)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions", deleted)))
			return nil
		},
	}

	cmd.Flags().String("project", "", "project to clear (required)")
	cmd.Flags().String("source-asset", "", "only delete transactions from this source account")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
