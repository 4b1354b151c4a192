package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"scadamap/mapping"
	"scadamap/report"
	"scadamap/store"
	"scadamap/workbook"
)

var (
	mapInput        string
	mapFormat       string
	mapThreshold    float64
	mapReportPath   string
	mapReportFormat string
	mapDryRun       bool
	mapOverrides    overrides
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Generate header-to-column mappings for a template and save them",
	Long: `Detect the header band of every sheet, score each header against the candidate
columns and save every match at or above the threshold as
"<SHEET>_<HEADER>" -> column.

Candidate columns come from the configured database table (database.driver,
database.dsn, database.table). When no database is configured or it cannot be
read, the columns.fallback list is used.

The store policy decides what happens to mappings saved earlier:
- overwrite: the stored document is replaced by this run
- merge: this run is laid over the stored document, its keys win`,
	Example: `
  # Map against the fallback columns and print the report
  scadamap map -i BatchReport.xlsx

  # Stricter threshold, merge into the stored mappings
  scadamap map -i BatchReport.xlsx --threshold 0.7 --policy merge

  # Map against a PostgreSQL table
  scadamap map -i BatchReport.xlsx --db-driver pgx --dsn "postgres://scada@localhost/plant" --table batch_log

  # Preview only, write the report as CSV
  scadamap map -i BatchReport.xlsx --dry-run --report ./report.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mapOverrides.apply(cfg)

		threshold, err := resolveThreshold(cmd.Flags().Changed("threshold"), mapThreshold, cfg.Mapping.Threshold)
		if err != nil {
			return err
		}

		reader, err := workbook.ReaderForPath(mapInput, mapFormat)
		if err != nil {
			return err
		}
		book, err := reader.Read(mapInput)
		if err != nil {
			return err
		}

		logger := logrus.StandardLogger().WithField("template", book.Name)
		source, closeSource, err := candidateSource(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSource()

		generator, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}

		result, err := generator.GenerateFrom(context.Background(), book, source, threshold)
		if err != nil {
			return err
		}

		if err := writeMapReport(result, mapReportPath, mapReportFormat); err != nil {
			return err
		}

		if mapDryRun {
			fmt.Println("Dry run: mappings not saved.")
			return nil
		}

		st, closeStore, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		saved, err := store.Apply(st, result.Document, cfg.Store.Policy)
		if err != nil {
			if errors.Is(err, store.ErrPersistence) {
				return fmt.Errorf("mappings not saved: %w", err)
			}
			return err
		}

		fmt.Printf("Saved %d mappings to %s (policy: %s, %d new from this template)\n", len(saved), cfg.Store.Path, cfg.Store.Policy, len(result.Document))
		return nil
	},
}

// writeMapReport prints the text report to stdout, or writes the report to
// path in the requested (or extension-derived) format.
func writeMapReport(result mapping.Result, path, format string) error {
	if strings.TrimSpace(path) == "" {
		writer, err := report.WriterForFormat(format)
		if err != nil {
			return err
		}
		return writer.Write(os.Stdout, result)
	}

	if strings.TrimSpace(format) == "" {
		format = report.FormatForPath(path)
	}
	writer, err := report.WriterForFormat(format)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := writer.Write(file, result); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	fmt.Printf("Report written: %s (%d headers, %d auto-mapped, %d unmapped)\n", path, result.HeadersFound(), result.MappedCount(), result.UnmappedCount())
	return nil
}

func init() {
	rootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringVarP(&mapInput, "input", "i", "", "Template file to map")
	mapCmd.Flags().StringVar(&mapFormat, "format", "", "Template format: excel|csv (default: from file extension)")
	mapCmd.Flags().Float64Var(&mapThreshold, "threshold", mapping.DefaultThreshold, "Minimum confidence 0..1 (default: mapping.threshold from config)")
	mapCmd.Flags().StringVar(&mapReportPath, "report", "", "Write the diagnostic report to this file instead of stdout")
	mapCmd.Flags().StringVar(&mapReportFormat, "report-format", "", "Report format: text|csv|json|excel (default: from --report extension)")
	mapCmd.Flags().BoolVar(&mapDryRun, "dry-run", false, "Print the report without saving mappings")
	mapCmd.Flags().StringVar(&mapOverrides.driver, "db-driver", "", "Database driver for live columns: sqlite|pgx")
	mapCmd.Flags().StringVar(&mapOverrides.dsn, "dsn", "", "Database DSN for live columns")
	mapCmd.Flags().StringVar(&mapOverrides.table, "table", "", "Table whose columns are candidates (default: all tables)")
	mapCmd.Flags().StringVar(&mapOverrides.backend, "backend", "", "Mapping store backend: file|sqlite")
	mapCmd.Flags().StringVarP(&mapOverrides.path, "output", "o", "", "Mapping store path (default: store.path from config)")
	mapCmd.Flags().StringVar(&mapOverrides.policy, "policy", "", "Store policy: overwrite|merge")
	_ = mapCmd.MarkFlagRequired("input")
}
