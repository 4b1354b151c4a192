package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scadamap/config"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active scadamap config file in your editor.

Editor selection order:
1) $VISUAL
2) $EDITOR
3) vi

If no config file exists yet, this command creates one with an example template first.
After the editor exits, the content is validated as scadamap YAML config and the
candidate columns are resolved once, so a wrong database.dsn or database.table
shows up here instead of as fallback columns in the next "map" run.`,
	Example: `
  # Edit active config
  scadamap config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := ensureConfigFile(configPath, []byte(config.ExampleYAML()))
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("No config file found. Created example config at: %s\n", configPath)
		}

		editor := resolveEditorValue(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
		editorCommand, err := buildEditorCommand(editor, configPath)
		if err != nil {
			return err
		}
		editorCommand.Stdin = os.Stdin
		editorCommand.Stdout = os.Stdout
		editorCommand.Stderr = os.Stderr
		if err := editorCommand.Run(); err != nil {
			return fmt.Errorf("opening editor failed: %w", err)
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading edited config failed: %w", err)
		}
		cfg, err := config.ValidateYAMLContent(content)
		if err != nil {
			return fmt.Errorf("config validation failed in %s: %w", configPath, err)
		}

		fmt.Printf("Configuration saved and validated: %s\n", configPath)
		fmt.Println(summarizeConfig(cfg))
		fmt.Println(describeCandidates(cmd.Context(), cfg))
		return nil
	},
}

func resolveConfigEditPath(configFileFlag, configFileUsed string) (string, error) {
	if strings.TrimSpace(configFileFlag) != "" {
		return configFileFlag, nil
	}
	if strings.TrimSpace(configFileUsed) != "" {
		return configFileUsed, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".scadamap.yaml"), nil
}

func ensureConfigFile(path string, content []byte) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return false, fmt.Errorf("creating config file failed: %w", err)
	}

	return true, nil
}

// describeCandidates resolves the candidate columns like "map" would and
// reports their source, or why they could not be resolved.
func describeCandidates(ctx context.Context, cfg *config.Config) string {
	if ctx == nil {
		ctx = context.Background()
	}
	source, closeSource, err := candidateSource(cfg, logrus.StandardLogger())
	if err != nil {
		return fmt.Sprintf("Candidate columns: unavailable (%v)", err)
	}
	defer closeSource()

	set, err := source.Candidates(ctx)
	if err != nil {
		return fmt.Sprintf("Candidate columns: unavailable (%v)", err)
	}
	return fmt.Sprintf("Candidate columns: %d from %s", len(set.Names), set.Source)
}

// summarizeConfig is the one-line view printed after create and edit.
func summarizeConfig(cfg *config.Config) string {
	columnsFrom := "fallback list"
	if cfg.Database.Driver != "" {
		columnsFrom = cfg.Database.Driver
		if cfg.Database.Table != "" {
			columnsFrom += "/" + cfg.Database.Table
		}
	}
	return fmt.Sprintf("threshold %g (%s), columns from %s, store %s %s (%s)",
		cfg.Mapping.Threshold, cfg.Mapping.Fuzzy, columnsFrom, cfg.Store.Backend, cfg.Store.Path, cfg.Store.Policy)
}

func resolveEditorValue(visual, editor string) string {
	if strings.TrimSpace(visual) != "" {
		return visual
	}
	if strings.TrimSpace(editor) != "" {
		return editor
	}
	return "vi"
}

func buildEditorCommand(editorValue, configPath string) (*exec.Cmd, error) {
	fields := strings.Fields(strings.TrimSpace(editorValue))
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}

	args := append(fields[1:], configPath)
	return exec.Command(fields[0], args...), nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
