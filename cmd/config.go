package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage scadamap configuration file values.",
	Long: `Create, edit, display, and delete the scadamap configuration file.

The configuration holds:
- mapping.threshold / mapping.fuzzy
- detect.max_rows / detect.max_cols / detect.min_run / detect.all_bands
- database.driver / database.dsn / database.table
- columns.fallback
- store.backend / store.path / store.policy
- log.level / log.format`,
	Example: `
  # Create default config in $HOME/.scadamap.yaml
  scadamap config create

  # Show active config and source file
  scadamap config show

  # Open active config in editor (creates example if missing)
  scadamap config edit

  # Delete active config file
  scadamap config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
