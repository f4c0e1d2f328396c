package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newClassifyCommand builds the single-organization command.
func newClassifyCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "classify <organization-name>",
		Short: "Classify a single organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			if noCache && d.store != nil {
				if _, err := d.store.Clear("", args[0]); err != nil {
					d.log.Warn("Clearing cached entries failed", "error", err.Error())
				}
			}

			result, err := d.engine.Process(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(payload))

			if !result.Success {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false,
		"drop cached entries for this organization before processing")
	return cmd
}
