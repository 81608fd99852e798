package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
	"github.com/ledgersage/ledgersage/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply any pending schema migrations to the database.

Migrations also run automatically before every command, so this is mainly
useful for verifying a database after an upgrade.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Database schema is up to date (version %d)", storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
