package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scadamap/config"
)

var configDeleteMappings bool

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by scadamap.

If no configuration file is active, the command returns an error. The stored
mapping document (store.path) is kept unless --mappings is given; it is then
removed as well, after the same "Y" confirmation "delete --all" asks for.`,
	Example: `
  # Delete active config, keep stored mappings
  scadamap config delete

  # Delete config and the mapping document it points to
  scadamap config delete --mappings

  # Delete config at a custom path
  scadamap --configFile ./plant-a.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		storePath := ""
		if configDeleteMappings {
			cfg, err := config.LoadAndValidate()
			if err != nil {
				return fmt.Errorf("resolve store.path before delete: %w", err)
			}
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, cfg.Store.Path)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
			storePath = cfg.Store.Path
		}

		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("error deleting configuration file: %w", err)
		}
		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)

		if storePath == "" {
			return nil
		}
		removed, err := removeMappingArtifact(storePath)
		if err != nil {
			return err
		}
		if removed {
			fmt.Printf("Mapping document deleted: %s\n", storePath)
		} else {
			fmt.Printf("No mapping document at: %s\n", storePath)
		}
		return nil
	},
}

// removeMappingArtifact deletes the file or SQLite database behind
// store.path. A missing artifact is not an error.
func removeMappingArtifact(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat mapping document: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("mapping store path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("delete mapping document: %w", err)
	}
	return true, nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)

	configDeleteCmd.Flags().BoolVar(&configDeleteMappings, "mappings", false, "Also delete the mapping document at store.path")
}
