package main

import (
	"fmt"
	"strconv"

	"github.com/dot5enko/metatable/io"
	"github.com/dot5enko/metatable/packer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSetCmd(a *app) *cobra.Command {

	var output string

	cmd := &cobra.Command{
		Use:   "set <bundle> <index> <propertyId> <value>",
		Short: "Write one property value and re-pack the bundle",
		Long: `Set parses value as YAML (a scalar or a flow sequence such as [1, 2]), writes
it through the table and re-packs every row. The bundle is rewritten in place
unless -o is given.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {

			path, id := args[0], args[2]

			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row index '%s'", args[1])
			}

			value, err := parseValue(args[3])
			if err != nil {
				return err
			}

			offsetType, err := a.offsetType()
			if err != nil {
				return err
			}

			table, err := a.openTable(path)
			if err != nil {
				return err
			}

			if !table.HasProperty(id) {
				table.close()
				return fmt.Errorf("%w: class '%s' has no property '%s'", packer.ErrUnknownProperty, table.Class().Id, id)
			}

			for _, bound := range table.PropertyIds(nil) {
				if table.LosesPrecision(bound) {
					table.close()
					return fmt.Errorf("cannot re-pack on this host: '%s' is read as float64", bound)
				}
			}

			if err := table.SetProperty(index, id, value); err != nil {
				table.close()
				return err
			}

			// repacked buffers are fresh, the mapping can go before the file is rewritten
			repacked, err := packer.Repack(table.Table, offsetType)
			table.close()

			if err != nil {
				return err
			}

			bundle := &io.Bundle{
				Uid:         table.Uid(),
				Count:       repacked.Count,
				Compression: table.bundle.Compression,
				BufferViews: repacked.BufferViews,
			}

			if output == "" {
				output = path
			}

			if err := io.WriteBundleFile(output, bundle); err != nil {
				return err
			}

			a.logger.Info("updated table",
				zap.Stringer("uid", bundle.Uid),
				zap.Int("row", index),
				zap.String("property", id),
			)

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "set '%s' of row %d in %s\n", id, index, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "bundle file to write (default: the input bundle)")

	return cmd
}
