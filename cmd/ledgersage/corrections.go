package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
)

func correctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Manage learned corrections",
		Long: `List and delete the corrections captured from manual transaction
edits. Corrections act as additional matching labels on every scoring pass.`,
	}

	cmd.AddCommand(listCorrectionsCmd())
	cmd.AddCommand(deleteCorrectionCmd())

	return cmd
}

func listCorrectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			corrections, err := store.GetUserCorrections(ctx)
			if err != nil {
				return fmt.Errorf("failed to get corrections: %w", err)
			}

			if len(corrections) == 0 {
				fmt.Println(cli.InfoStyle.Render("No corrections recorded yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Description"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Destination"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 30),
				strings.Repeat("-", 20),
				strings.Repeat("-", 20))

			for _, uc := range corrections {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", uc.ID, uc.Description, uc.Category, uc.DestinationAcc)
			}

			return nil
		},
	}
}

func deleteCorrectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid correction ID %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteCorrection(ctx, id); err != nil {
				return fmt.Errorf("failed to delete correction: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Correction deleted"))
			return nil
		},
	}
}
