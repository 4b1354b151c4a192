package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var columnsOverrides overrides

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the candidate columns a mapping run would use",
	Long: `Resolve candidate columns exactly like "map" does and print them with their source.

With a configured database the columns of database.table (or of every table)
are listed; otherwise, or when the database cannot be read, the fallback list.`,
	Example: `
  # Columns from config
  scadamap columns

  # Columns of one SQLite table
  scadamap columns --db-driver sqlite --dsn ./scada.db --table batch_log
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		columnsOverrides.apply(cfg)

		source, closeSource, err := candidateSource(cfg, logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer closeSource()

		set, err := source.Candidates(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Source: %s\n", set.Source)
		fmt.Printf("Columns: %d\n", len(set.Names))
		for _, name := range set.Names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)

	columnsCmd.Flags().StringVar(&columnsOverrides.driver, "db-driver", "", "Database driver for live columns: sqlite|pgx")
	columnsCmd.Flags().StringVar(&columnsOverrides.dsn, "dsn", "", "Database DSN for live columns")
	columnsCmd.Flags().StringVar(&columnsOverrides.table, "table", "", "Table whose columns are listed (default: all tables)")
}
