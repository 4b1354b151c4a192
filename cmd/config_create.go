package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"scadamap/config"
)

// templateSettings are the values "config create" can fill into the example
// template instead of leaving them for a later "config edit".
type templateSettings struct {
	driver    string
	dsn       string
	table     string
	threshold string
	backend   string
	path      string
	policy    string
}

var createSettings templateSettings

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

Without flags the template maps against the built-in SCADA column list and
stores mappings in ./mappings_config.json. Flags fill the database the
candidate columns are read from, the confidence threshold and the mapping
store into the template; the result is validated before it is written.

If a configuration file is already in use, no new file is written.`,
	Example: `
  # Create default config at $HOME/.scadamap.yaml
  scadamap config create

  # Create a config that maps against one PostgreSQL table and merges results
  scadamap config create --db-driver pgx --dsn "postgres://scada@db/plant" --table batch_log --policy merge

  # Create a project-local config with a stricter threshold
  scadamap --configFile ./.scadamap.yaml config create --threshold 0.7
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(createSettings)
	},
}

func saveDefaultConfig(settings templateSettings) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	content, err := renderConfigTemplate(settings)
	if err != nil {
		return err
	}

	created, err := ensureConfigFile(configPath, content)
	if err != nil {
		return err
	}

	if !created {
		fmt.Printf("Config file already exists at: %s\n", configPath)
		return nil
	}

	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return err
	}
	fmt.Printf("New config file created at: %s\n", configPath)
	fmt.Println(summarizeConfig(cfg))
	if cfg.Database.Driver == "" {
		fmt.Println("Next: set database.driver/dsn/table for live columns, or run: scadamap map -i <template.xlsx>")
	} else {
		fmt.Println("Next: check the columns with: scadamap columns")
	}
	return nil
}

// renderConfigTemplate returns the example template with settings applied.
func renderConfigTemplate(settings templateSettings) ([]byte, error) {
	example := []byte(config.ExampleYAML())
	if settings == (templateSettings{}) {
		return example, nil
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(example, &doc); err != nil {
		return nil, fmt.Errorf("parse config template: %w", err)
	}

	set := func(section, key, value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		values, err := ensureMapAny(doc, section)
		if err != nil {
			return err
		}
		values[key] = value
		return nil
	}

	if err := set("database", "driver", strings.ToLower(settings.driver)); err != nil {
		return nil, err
	}
	if err := set("database", "dsn", settings.dsn); err != nil {
		return nil, err
	}
	if err := set("database", "table", settings.table); err != nil {
		return nil, err
	}
	if err := set("store", "backend", strings.ToLower(settings.backend)); err != nil {
		return nil, err
	}
	if err := set("store", "path", settings.path); err != nil {
		return nil, err
	}
	if err := set("store", "policy", strings.ToLower(settings.policy)); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(settings.threshold); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --threshold %q", raw)
		}
		values, err := ensureMapAny(doc, "mapping")
		if err != nil {
			return nil, err
		}
		values["threshold"] = threshold
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal config yaml: %w", err)
	}
	content := append([]byte("# scadamap configuration\n"), body...)
	if _, err := config.ValidateYAMLContent(content); err != nil {
		return nil, fmt.Errorf("config from flags is invalid: %w", err)
	}
	return content, nil
}

func ensureMapAny(doc map[string]any, key string) (map[string]any, error) {
	raw, exists := doc[key]
	if !exists || raw == nil {
		result := map[string]any{}
		doc[key] = result
		return result, nil
	}
	result, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config key %q must be a mapping", key)
	}
	return result, nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().StringVar(&createSettings.driver, "db-driver", "", "Database driver for live columns: sqlite|pgx")
	configCreateCmd.Flags().StringVar(&createSettings.dsn, "dsn", "", "Database DSN for live columns")
	configCreateCmd.Flags().StringVar(&createSettings.table, "table", "", "Table whose columns are candidates (default: all tables)")
	configCreateCmd.Flags().StringVar(&createSettings.threshold, "threshold", "", "Minimum confidence 0..1")
	configCreateCmd.Flags().StringVar(&createSettings.backend, "backend", "", "Mapping store backend: file|sqlite")
	configCreateCmd.Flags().StringVar(&createSettings.path, "path", "", "Mapping store path")
	configCreateCmd.Flags().StringVar(&createSettings.policy, "policy", "", "Store policy: overwrite|merge")
}
