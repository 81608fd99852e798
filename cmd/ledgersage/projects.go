package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgersage/ledgersage/internal/cli"
)

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
		Long:  `List, create, and delete the projects that group transactions.`,
	}

	cmd.AddCommand(listProjectsCmd())
	cmd.AddCommand(createProjectCmd())
	cmd.AddCommand(deleteProjectCmd())

	return cmd
}

func listProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			projects, err := store.GetProjects(ctx)
			if err != nil {
				return fmt.Errorf("failed to get projects: %w", err)
			}

			if len(projects) == 0 {
				fmt.Println(cli.InfoStyle.Render("No projects found. Use 'ledgersage projects create' to add one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Description"),
				cli.HeaderStyle.Render("Created"),
				cli.HeaderStyle.Render("Completed"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 36),
				strings.Repeat("-", 30),
				strings.Repeat("-", 10),
				strings.Repeat("-", 9))

			for _, p := range projects {
				completed := ""
				if p.Completed {
					completed = cli.SuccessIcon
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Description, p.Created.Format("2006-01-02"), completed)
			}

			return nil
		},
	}
}

func createProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <description>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			project, err := store.CreateProject(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created project %s", project.ID)))
			return nil
		},
	}
}

func deleteProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteProject(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Project deleted"))
			return nil
		},
	}
}
