package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var showOverrides overrides

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored mappings",
	Long: `Print every stored "<SHEET>_<HEADER>" -> column mapping in key order.

A missing or unreadable mapping file shows as an empty document.`,
	Example: `
  # Show mappings from store.path
  scadamap show

  # Show mappings from a SQLite store
  scadamap show --backend sqlite --path ./mappings.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		showOverrides.apply(cfg)

		st, closeStore, err := openStore(cfg, logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer closeStore()

		doc := st.Load()
		fmt.Printf("Mappings in %s: %d\n", cfg.Store.Path, len(doc))
		for _, key := range doc.Keys() {
			fmt.Printf("  %s -> %s\n", key, doc[key])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showOverrides.backend, "backend", "", "Mapping store backend: file|sqlite")
	showCmd.Flags().StringVar(&showOverrides.path, "path", "", "Mapping store path (default: store.path from config)")
}
