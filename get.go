package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <bundle> <index> <propertyId>",
		Short: "Print one property value of one row",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {

			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row index '%s'", args[1])
			}

			table, err := a.openTable(args[0])
			if err != nil {
				return err
			}
			defer table.close()

			value, err := table.GetProperty(index, args[2])
			if err != nil {
				return err
			}

			if value == nil {
				return fmt.Errorf("row %d has no value for '%s'", index, args[2])
			}

			if table.LosesPrecision(args[2]) {
				a.logger.Sugar().Warnf("'%s' passes through float64 on this host", args[2])
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
			return nil
		},
	}
}
