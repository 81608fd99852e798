package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
)

func assetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage source accounts",
	}

	cmd.AddCommand(listAssetsCmd())
	cmd.AddCommand(addAssetCmd())
	cmd.AddCommand(deleteAssetCmd())

	return cmd
}

func listAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all source accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			assets, err := store.GetAssets(ctx)
			if err != nil {
				return fmt.Errorf("failed to get assets: %w", err)
			}

			if len(assets) == 0 {
				fmt.Println(cli.InfoStyle.Render("No assets found. Use 'ledgersage assets add' to create one."))
				return nil
			}

			for _, a := range assets {
				fmt.Printf("%d\t%s\n", a.ID, a.Name)
			}

			return nil
		},
	}
}

func addAssetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a source account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			asset, err := store.CreateAsset(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to create asset: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created asset %d (%s)", asset.ID, asset.Name)))
			return nil
		},
	}
}

func deleteAssetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a source account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid asset ID %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteAsset(ctx, id); err != nil {
				return fmt.Errorf("failed to delete asset: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Asset deleted"))
			return nil
		},
	}
}
