package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
	"github.com/ledgersage/ledgersage/internal/importer"
	"github.com/ledgersage/ledgersage/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import and score transactions from a bank export",
		Long: `Import transactions from a CSV or OFX/QFX file into a project.

Each row is scored against the current category and correction catalogs and
stored with the winning category, destination account, and similarity score.
The import is atomic: a failed batch leaves nothing behind.

CSV files use the format: transdate,desc,amount (with a header row).

Examples:
  ledgersage import --project <id> --source-asset Checking transactions.csv
  ledgersage import --project <id> --source-asset Visa statement.qfx`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("project", "", "project to import into (required)")
	cmd.Flags().String("source-asset", "", "source account applied to every imported row")
	cmd.Flags().BoolP("dry-run", "d", false, "parse and report without saving")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	projectID, _ := cmd.Flags().GetString("project")
	sourceAsset, _ := cmd.Flags().GetString("source-asset")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	rows, err := parseImportFile(args[0])
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println(cli.FormatWarning("No rows found in file"))
		return nil
	}

	if dryRun {
		fmt.Println(cli.FormatTitle(fmt.Sprintf("Parsed %d rows (dry run, nothing saved)", len(rows))))
		for _, row := range rows {
			fmt.Printf("  %s  %-40s  %s\n", row.Date.Format("2006-01-02"), row.Description, row.Amount)
		}
		return nil
	}

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Imports must reference an existing project; a typo'd ID would
	// otherwise fail on the foreign key mid-batch.
	if _, err := store.GetProject(ctx, projectID); err != nil {
		return err
	}

	if sourceAsset != "" {
		if _, err := store.GetAssetByName(ctx, sourceAsset); err != nil {
			return err
		}
	}

	bar := newProgressBar(len(rows), "Scoring transactions...")
	eng.OnProgress = func(done, total int) { _ = bar.Set(done) }

	stats, err := eng.ImportRows(ctx, projectID, sourceAsset, rows)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Imported %d transactions (%d matched, %d below threshold, %d failed)",
		stats.Total, stats.Matched, stats.Skipped, stats.Failed)))
	return nil
}

// parseImportFile picks a parser by file extension.
func parseImportFile(path string) ([]model.ImportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return importer.ParseCSV(f)
	case ".ofx", ".qfx":
		return importer.ParseOFX(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .csv, .ofx, or .qfx)", filepath.Ext(path))
	}
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(io.Writer(os.Stderr)),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
}
