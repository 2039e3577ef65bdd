package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored state as JSON or YAML",
	Long: `Print the state as tl would load it: repaired or reset payloads are
shown after recovery, not as stored. Use "tl doctor" to inspect the raw slot.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Persist == nil {
			return fmt.Errorf("storage not initialized")
		}
		res, err := Persist.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch exportFormat {
		case "json":
			data, err := json.MarshalIndent(res.State, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting state as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(res.State); err != nil {
				return fmt.Errorf("formatting state as YAML: %w", err)
			}
			return enc.Close()
		default:
			return fmt.Errorf("unsupported format %q (use json or yaml)", exportFormat)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or yaml")
	rootCmd.AddCommand(exportCmd)
}
