package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"tracker/internal/models"
	"tracker/internal/store"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List and inspect data files",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the data files of the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, err := openStore(cmd)
		if err != nil {
			return err
		}
		files, err := m.Files(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list data files: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tFILE\tSIZE\tVERSION")
		for _, f := range files {
			active := ""
			if f.Path == m.Path() {
				active = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.12s\n", active, f.Path, f.Size, f.Version)
		}
		return tw.Flush()
	},
}

var filesSwitchCmd = &cobra.Command{
	Use:   "switch <path>",
	Short: "Switch to another data file and show what it holds",
	Long: `Switch saves nothing: it loads the current data file, switches the cache to
<path> and prints the record count of every collection. A missing file is
created empty by the first operation run against it. Set DATA_FILE or pass
--data-file to keep working on it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, err := openStore(cmd)
		if err != nil {
			return err
		}
		if err := m.Switch(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to switch data file: %w", err)
		}

		meta := m.Metadata()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Data file %s (version %d", m.Path(), meta.Version)
		if !meta.LastUpdated.IsZero() {
			fmt.Fprintf(out, ", updated %s", meta.LastUpdated.Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(out, ")")

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, c := range m.Collections() {
			records, err := store.Get[map[string]any](m, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "  %s\t%d\n", c, len(records))
		}
		return tw.Flush()
	},
}

var listCmd = &cobra.Command{
	Use:       "list <collection>",
	Short:     "Print the records of a collection as JSON",
	Example:   `  tracker list containers`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: collectionNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := models.Collection(args[0])
		if !models.IsKnown(c) {
			return fmt.Errorf("unknown collection %q", args[0])
		}
		_, m, err := openStore(cmd)
		if err != nil {
			return err
		}
		records, err := store.Get[map[string]any](m, c)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), records)
	},
}

func collectionNames() []string {
	names := make([]string, 0, len(models.AllCollections))
	for _, c := range models.AllCollections {
		names = append(names, string(c))
	}
	return names
}

func init() {
	rootCmd.AddCommand(filesCmd, listCmd)
	filesCmd.AddCommand(filesListCmd, filesSwitchCmd)
}
