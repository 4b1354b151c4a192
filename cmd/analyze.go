package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scadamap/config"
	"scadamap/detect"
	"scadamap/workbook"
)

var (
	analyzeInput    string
	analyzeFormat   string
	analyzeAllBands bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Detect the header band of every sheet in a template",
	Long: `Scan a template and print the detected header row of every sheet.

A header row is the first row (within detect.max_rows/detect.max_cols) holding
at least detect.min_run adjacent text cells that are not numbers. Nothing is
mapped or saved.`,
	Example: `
  # Show header bands of an Excel template
  scadamap analyze -i BatchReport.xlsx

  # Show every header-like row, e.g. for two-row headers
  scadamap analyze -i BatchReport.xlsx --all-bands
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("all-bands") {
			cfg.Detect.AllBands = analyzeAllBands
		}

		reader, err := workbook.ReaderForPath(analyzeInput, analyzeFormat)
		if err != nil {
			return err
		}
		book, err := reader.Read(analyzeInput)
		if err != nil {
			return err
		}

		detector := detectorFor(cfg)
		fmt.Printf("Template: %s (%d sheets)\n", book.Name, len(book.Sheets))
		for _, sheet := range book.Sheets {
			fmt.Printf("\nSheet: %s\n", sheet.Name)
			bands := detector.Detect(sheet)
			if len(bands) == 0 {
				fmt.Println("   Could not detect headers")
				continue
			}
			for _, band := range bands {
				fmt.Printf("   %s\n", describeBand(band))
			}
		}
		return nil
	},
}

func detectorFor(cfg *config.Config) *detect.Detector {
	return detect.New(cfg.DetectOptions())
}

func describeBand(band detect.HeaderBand) string {
	return fmt.Sprintf("Row %d, columns %d-%d: %s", band.Row, band.StartCol, band.EndCol, strings.Join(band.Headers(), " | "))
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Template file to analyze")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "Template format: excel|csv (default: from file extension)")
	analyzeCmd.Flags().BoolVar(&analyzeAllBands, "all-bands", false, "Report every header-like row instead of the first one")
	_ = analyzeCmd.MarkFlagRequired("input")
}
