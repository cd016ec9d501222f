package main

import (
	"errors"
	"fmt"
	goio "io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/dot5enko/metatable/io"
	"github.com/dot5enko/metatable/metadata"
	"github.com/dot5enko/metatable/ops"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {

	var (
		raw     bool
		stats   bool
		dumpDir string
	)

	cmd := &cobra.Command{
		Use:   "inspect <bundle>",
		Short: "Print every row of a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			table, err := a.openTable(args[0])
			if err != nil {
				return err
			}
			defer table.close()

			out := cmd.OutOrStdout()

			if raw {
				spew.Fdump(out, table.bundle)
			}

			if dumpDir != "" {
				if err := io.DumpBufferViews(dumpDir, table.bundle); err != nil {
					return err
				}
			}

			color.New(color.FgGreen).Fprintf(out, "table %s: class '%s', %d rows, %s\n",
				table.Uid(), table.Class().Id, table.Count(), table.bundle.Compression)

			var lines []string

			timeCycles(a.logger, 1, "read rows", table.Count(), func() {
				lines, err = formatRows(table.Table)
			})

			if err != nil {
				return err
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			if stats {
				return printStats(out, table.Table)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "dump the decoded bundle")
	cmd.Flags().BoolVar(&stats, "stats", false, "print min and max of every scalar numeric property")
	cmd.Flags().StringVar(&dumpDir, "dump", "", "write every buffer view to <dir>/<view>.bin")

	return cmd
}

func formatRows(table *metadata.Table) ([]string, error) {

	ids := table.PropertyIds(nil)
	lines := make([]string, 0, table.Count())

	for index, row := range table.Rows() {

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d:", index)

		for _, id := range ids {
			value, err := row.GetProperty(id)
			if err != nil {
				return nil, fmt.Errorf("row %d, property '%s': %w", index, id, err)
			}
			fmt.Fprintf(&sb, " %s=%s", id, formatValue(value))
		}

		lines = append(lines, sb.String())
	}

	return lines, nil
}

func printStats(out goio.Writer, table *metadata.Table) error {

	for _, id := range table.PropertyIds(nil) {

		bounds, ok, err := ops.Stats(table, id)
		if errors.Is(err, ops.ErrUnsupportedProperty) {
			continue
		}
		if err != nil {
			return err
		}

		if ok {
			fmt.Fprintf(out, "%s: min=%v max=%v\n", id, bounds.Min, bounds.Max)
		}
	}

	return nil
}

func formatValue(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(value)
}
