// Command migrate applies, inspects and rolls back the blog schema.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"yatube/internal/config"
	"yatube/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type target struct {
	cfg *config.Config
	db  *gorm.DB
}

func open() (*target, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &target{cfg: cfg, db: db}, nil
}

func main() {
	if err := rootCmd(open).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd(connect func() (*target, error)) *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the users, groups, posts, comments and follows schema",
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := connect()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(cmd.Context(), t.db); err != nil {
				return fmt.Errorf("sql migrations failed: %w", err)
			}
			return printStatus(cmd, t)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "auto",
		Short: "Run AutoMigrate over the blog models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := connect()
			if err != nil {
				return err
			}
			t.cfg.DBSchemaMode = database.SchemaModeAuto
			if err := database.ApplySchema(cmd.Context(), t.db, t.cfg); err != nil {
				return fmt.Errorf("auto schema apply failed: %w", err)
			}
			return printStatus(cmd, t)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema plan, pending migrations and table row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := connect()
			if err != nil {
				return err
			}
			return printStatus(cmd, t)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down <version>",
		Short: "Roll back one SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version < 1 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			t, err := connect()
			if err != nil {
				return err
			}
			if err := database.RollbackMigration(cmd.Context(), t.db, version); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %06d\n", version)
			return nil
		},
	})

	return root
}

func printStatus(cmd *cobra.Command, t *target) error {
	status, err := database.GetSchemaStatus(cmd.Context(), t.db, t.cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	writeStatus(cmd.OutOrStdout(), status)
	return nil
}

func writeStatus(out io.Writer, status *database.SchemaStatus) {
	fmt.Fprintf(out, "driver=%s mode=%s env=%s run_sql=%t run_auto=%t\n",
		status.Driver, status.Mode, status.Environment, status.RunSQL, status.RunAuto)
	fmt.Fprintf(out, "plan: %s\n", status.Reason)
	if status.RunSQL {
		fmt.Fprintf(out, "applied=%d pending=%d\n", len(status.AppliedVersions), len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			fmt.Fprintf(out, "pending: %s\n", m.String())
		}
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tPRESENT\tROWS")
	for _, table := range status.Tables {
		rows := "-"
		if table.Present {
			rows = strconv.FormatInt(table.Rows, 10)
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", table.Name, table.Present, rows)
	}
	_ = w.Flush()

	if status.Ready() {
		fmt.Fprintln(out, "schema ready")
	} else {
		fmt.Fprintln(out, "schema incomplete")
	}
}
