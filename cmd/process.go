package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/engine"
)

// newProcessCommand builds the batch processing command.
func newProcessCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "process <organizations-file>",
		Short: "Classify every organization listed in a file",
		Long: `Reads a newline-delimited list of organization names, runs the
full pipeline for each and writes the results as JSON. Already processed
organizations are served from the cache, so re-running after an
interruption only costs the remaining work.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}

			orgs, err := readOrganizations(args[0])
			if err != nil {
				return err
			}
			if len(orgs) == 0 {
				return fmt.Errorf("no organizations found in %s", args[0])
			}

			runner := engine.NewRunner(d.engine, d.cfg.Batch, d.log)
			summary, runErr := runner.Run(cmd.Context(), orgs)

			if summary != nil && len(summary.Results) > 0 {
				if err := writeResults(outputPath, summary); err != nil {
					d.log.Error("Writing results failed", "error", err.Error())
				}
				printSummary(summary)
				printUsage(d)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "results.json",
		"path for the JSON results file")
	return cmd
}

// readOrganizations loads the newline-delimited organization list,
// skipping blanks and comment lines.
func readOrganizations(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var orgs []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		orgs = append(orgs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return orgs, nil
}

// writeResults persists the batch summary as indented JSON.
func writeResults(path string, summary *engine.BatchSummary) error {
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// printSummary renders the per-organization table and totals.
func printSummary(summary *engine.BatchSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Organization", "Insurance", "Method", "Source", "Status"})

	for _, r := range summary.Results {
		t.AppendRow(table.Row{
			r.OrganizationName,
			verdictCell(r),
			string(r.SearchMethod),
			string(r.ContentSourceType),
			statusCell(r),
		})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d organizations", summary.Total),
		fmt.Sprintf("%d yes / %d no", summary.Insurance, summary.NonInsurance),
		"", "",
		fmt.Sprintf("%d failed", summary.Failed),
	})
	t.Render()
}

func verdictCell(r *domain.Result) string {
	if r.IsInsurance == nil {
		return "-"
	}
	if *r.IsInsurance {
		return text.FgGreen.Sprint("yes")
	}
	return "no"
}

func statusCell(r *domain.Result) string {
	if r.Success {
		return "ok"
	}
	return text.FgRed.Sprintf("failed (%s)", r.ErrorStage)
}

// printUsage reports API consumption for the run.
func printUsage(d *deps) {
	usage := d.api.Usage()
	if usage.Requests == 0 {
		return
	}
	fmt.Printf("API usage: %d requests, %d retries, %d tokens, $%.4f\n",
		usage.Requests, usage.Retries, usage.UsedTokens, usage.TotalCost)
}
