package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scadamap/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Defaults are
shown for keys the file does not set. The last line resolves the candidate
columns the way "map" would and names their source: the live table, or the
fallback list when no database is configured or it cannot be read.`,
	Example: `
  # Show active configuration
  scadamap config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded, showing defaults.")
		}
		fmt.Println("Configuration:")
		fmt.Printf("mapping.threshold: %g\n", cfg.Mapping.Threshold)
		fmt.Printf("mapping.fuzzy: %s\n", cfg.Mapping.Fuzzy)
		fmt.Printf("detect.max_rows: %d\n", cfg.Detect.MaxRows)
		fmt.Printf("detect.max_cols: %d\n", cfg.Detect.MaxCols)
		fmt.Printf("detect.min_run: %d\n", cfg.Detect.MinRun)
		fmt.Printf("detect.all_bands: %t\n", cfg.Detect.AllBands)
		fmt.Printf("database.driver: %s\n", cfg.Database.Driver)
		fmt.Printf("database.dsn: %s\n", maskDSN(cfg.Database.DSN))
		fmt.Printf("database.table: %s\n", cfg.Database.Table)
		fallbackNote := ""
		if len(cfg.Columns.Fallback) == 0 {
			fallbackNote = " (built-in)"
		}
		fmt.Printf("columns.fallback%s: %s\n", fallbackNote, strings.Join(cfg.FallbackColumns(), ", "))
		fmt.Printf("store.backend: %s\n", cfg.Store.Backend)
		fmt.Printf("store.path: %s\n", cfg.Store.Path)
		fmt.Printf("store.policy: %s\n", cfg.Store.Policy)
		fmt.Printf("log.level: %s\n", cfg.Log.Level)
		fmt.Printf("log.format: %s\n", cfg.Log.Format)
		fmt.Println(describeCandidates(cmd.Context(), cfg))
	},
}

// maskDSN hides the password of a URL-style DSN.
func maskDSN(dsn string) string {
	scheme := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if scheme < 0 || at < scheme {
		return dsn
	}
	credentials := dsn[scheme+3 : at]
	colon := strings.Index(credentials, ":")
	if colon < 0 {
		return dsn
	}
	return dsn[:scheme+3] + credentials[:colon] + ":***" + dsn[at:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
