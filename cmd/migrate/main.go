package main

import (
	"fmt"
	"os"

	"gopetro/adapters/excel"
	"gopetro/adapters/postgres"
	"gopetro/internal"
	"gopetro/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// dbFlags are shared by every subcommand. Defaults come from the environment.
type dbFlags struct {
	driver string
	url    string
	table  string
}

func (f *dbFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.driver, "driver", envOr("DATA_SOURCE", postgres.DriverPostgres), "Database driver (postgres or sqlite)")
	cmd.PersistentFlags().StringVar(&f.url, "database-url", os.Getenv("DATABASE_URL"), "Database connection string")
	cmd.PersistentFlags().StringVar(&f.table, "table", envOr("SAMPLES_TABLE", "core_samples"), "Samples table name")
}

func (f *dbFlags) connect(cmd *cobra.Command) (*sqlx.DB, error) {
	if f.url == "" {
		return nil, fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	if f.driver != postgres.DriverPostgres && f.driver != postgres.DriverSQLite {
		return nil, fmt.Errorf("unsupported driver %q", f.driver)
	}
	return postgres.Connect(cmd.Context(), f.driver, f.url)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	logger := internal.NewDefaultLogger()
	defer logger.Sync()

	if err := newRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(logger *internal.Logger) *cobra.Command {
	var db dbFlags

	rootCmd := &cobra.Command{
		Use:          "gopetro-migrate",
		Short:        "Create the samples schema and load sample files into it",
		SilenceUsage: true,
	}
	db.register(rootCmd)

	rootCmd.AddCommand(newUpCmd(&db, logger), newSeedCmd(&db, logger))
	return rootCmd
}

func newUpCmd(db *dbFlags, logger *internal.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply the schema migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			runner := migration.NewRunner(db.table)
			if err := runner.Run(cmd.Context(), conn); err != nil {
				return err
			}
			logger.Info("Schema %s applied to %s", runner.Version(), db.driver)
			fmt.Fprintf(cmd.OutOrStdout(), "schema %s applied\n", runner.Version())
			return nil
		},
	}
}

func newSeedCmd(db *dbFlags, logger *internal.Logger) *cobra.Command {
	var file, sheet string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the samples of an xlsx or csv file",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := migration.NewRunner(db.table).Applied(cmd.Context(), conn)
			if err != nil || !applied {
				return fmt.Errorf("schema not applied, run `gopetro-migrate up` first")
			}

			cfg := excel.DefaultExcelConfig(file)
			cfg.Sheet = sheet
			samples, err := excel.NewSampleSource(cfg, logger).LoadSamples(cmd.Context())
			if err != nil {
				return err
			}

			repo := postgres.NewSampleRepository(conn, db.table)
			if err := repo.Insert(cmd.Context(), samples); err != nil {
				return err
			}
			total, err := repo.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d samples, table %s now holds %d\n", len(samples), db.table, total)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "xlsx or csv file to load")
	cmd.Flags().StringVar(&sheet, "sheet", "", "xlsx sheet to read (first sheet when empty)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
