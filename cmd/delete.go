package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"scadamap/mapping"
)

var (
	deleteKeys      []string
	deleteAll       bool
	deleteOverrides overrides
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete stored mappings",
	Long: `Remove single mapping keys from the store, e.g. a wrong automatic match that
should be mapped by hand, or clear the complete document.

Clearing everything requires an interactive prompt answered with exactly "Y".`,
	Example: `
  # Remove one mapping
  scadamap delete --key REPORT_TEST_TYPE

  # Remove every mapping (requires interactive confirmation)
  scadamap delete --all
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteAll && len(deleteKeys) == 0 {
			return fmt.Errorf("nothing to delete: pass --key or --all")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		deleteOverrides.apply(cfg)

		st, closeStore, err := openStore(cfg, logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer closeStore()

		if deleteAll {
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, cfg.Store.Path)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
			if err := st.Save(mapping.Document{}); err != nil {
				return err
			}
			fmt.Printf("Deleted all mappings in %s\n", cfg.Store.Path)
			return nil
		}

		doc, removed, missing := removeKeys(st.Load(), deleteKeys)
		for _, key := range missing {
			fmt.Printf("Not found: %s\n", key)
		}
		if removed == 0 {
			return nil
		}
		if err := st.Save(doc); err != nil {
			return err
		}
		fmt.Printf("Deleted %d mappings, %d remain in %s\n", removed, len(doc), cfg.Store.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringArrayVar(&deleteKeys, "key", nil, "Mapping key to delete (repeatable, case-insensitive)")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete every stored mapping")
	deleteCmd.Flags().StringVar(&deleteOverrides.backend, "backend", "", "Mapping store backend: file|sqlite")
	deleteCmd.Flags().StringVar(&deleteOverrides.path, "path", "", "Mapping store path (default: store.path from config)")
}

// removeKeys returns doc without keys; keys are normalized like stored keys
// before lookup.
func removeKeys(doc mapping.Document, keys []string) (mapping.Document, int, []string) {
	out := doc.Clone()
	removed := 0
	var missing []string
	for _, key := range keys {
		key = mapping.NormalizeKey(key)
		if _, ok := out[key]; !ok {
			missing = append(missing, key)
			continue
		}
		delete(out, key)
		removed++
	}
	return out, removed, missing
}

func confirmDeletePrompt(input io.Reader, output io.Writer, path string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete all mappings in %q? Type Y to confirm: ", path); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}
