package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/chsoares/org-classifier/internal/cache"
)

// newCacheCommand builds the cache inspection command group.
func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the disk cache",
	}

	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheListCommand())
	cmd.AddCommand(newCacheClearCommand())
	return cmd
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts and sizes per namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildCacheDeps()
			if err != nil {
				return err
			}

			stats, err := d.store.Stats()
			if err != nil {
				return fmt.Errorf("reading cache stats: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Namespace", "Entries", "Size (bytes)"})
			for _, ns := range cache.Namespaces {
				nsStats := stats.ByNamespace[ns]
				t.AppendRow(table.Row{string(ns), nsStats.Entries, nsStats.SizeBytes})
			}
			t.AppendFooter(table.Row{"total", stats.TotalEntries, stats.TotalSizeBytes})
			t.Render()
			return nil
		},
	}
}

func newCacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <namespace>",
		Short: "List cached organization names in a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := cache.Namespace(args[0])
			if !ns.Valid() {
				return fmt.Errorf("unknown namespace %q (valid: %v)", args[0], cache.Namespaces)
			}

			d, err := buildCacheDeps()
			if err != nil {
				return err
			}

			names, err := d.store.ListKeys(ns)
			if err != nil {
				return fmt.Errorf("listing namespace %s: %w", ns, err)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			fmt.Fprintf(os.Stderr, "%d entries\n", len(names))
			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	var namespace string
	var orgName string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached entries",
		Long: `Removes cached entries. With no flags the whole cache is cleared;
--namespace and --organization narrow the scope.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := cache.Namespace(namespace)
			if namespace != "" && !ns.Valid() {
				return fmt.Errorf("unknown namespace %q (valid: %v)", namespace, cache.Namespaces)
			}

			d, err := buildCacheDeps()
			if err != nil {
				return err
			}

			removed, err := d.store.Clear(ns, orgName)
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Printf("removed %d entries\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "limit to one namespace")
	cmd.Flags().StringVar(&orgName, "organization", "", "limit to one organization")
	return cmd
}
