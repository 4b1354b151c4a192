/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scadamap/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scadamap",
	Short: "Map SCADA Excel report templates to database columns.",
	Long: `
**********************************************
*              SCADA MAP                     *
**********************************************

This CLI scans Excel report templates, detects the header band of every sheet,
matches each header against the columns of a database table (or a static
fallback list) and stores a flat "<SHEET>_<HEADER>" -> column mapping that the
report export uses to fill the template.

Supported template formats:
- Excel: .xlsx, .xlsm, .xltx, .xltm
- CSV: .csv
`,
	Example: `
  # Create configuration file
  scadamap config create

  # Show the detected header bands of a template
  scadamap analyze -i BatchReport.xlsx

  # Generate and save mappings against the fallback column list
  scadamap map -i BatchReport.xlsx

  # Generate mappings against a live SQLite table, merge into the stored document
  scadamap map -i BatchReport.xlsx --db-driver sqlite --dsn ./scada.db --table batch_log --policy merge

  # Write the diagnostic report as Excel
  scadamap map -i BatchReport.xlsx --report ./mapping-report.xlsx

  # Print the stored mappings
  scadamap show

  # Serve the mapping API for the upload page
  scadamap serve --port 8080
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.scadamap.yaml, then ./.scadamap.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".scadamap" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".scadamap")
	}

	// SCADAMAP_MAPPING_THRESHOLD overrides mapping.threshold
	viper.SetEnvPrefix("scadamap")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: scadamap config create")
	}
}
