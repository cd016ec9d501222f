package main

import (
	"fmt"
	"strings"

	"github.com/dot5enko/metatable/ops"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFindCmd(a *app) *cobra.Command {

	var where []string

	cmd := &cobra.Command{
		Use:   "find <bundle> --where property=value",
		Short: "Print the indices of rows matching every condition",
		Long: `Find selects rows by scalar numeric properties. A condition is either
property=value or property=from..to (inclusive). Normalized properties are
compared in their normalized domain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			conditions := make([]ops.Condition, 0, len(where))
			for _, text := range where {
				cond, err := parseCondition(text)
				if err != nil {
					return err
				}
				conditions = append(conditions, cond)
			}

			table, err := a.openTable(args[0])
			if err != nil {
				return err
			}
			defer table.close()

			var rows []int

			timeCycles(a.logger, 1, "select rows", table.Count(), func() {
				rows, err = ops.Select(table.Table, conditions...)
			})

			if err != nil {
				return err
			}

			a.logger.Debug("selected rows", zap.Int("matched", len(rows)), zap.Int("rows", table.Count()))

			out := cmd.OutOrStdout()
			for _, index := range rows {
				fmt.Fprintln(out, index)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&where, "where", nil, "condition property=value or property=from..to, repeatable")

	return cmd
}

func parseCondition(text string) (ops.Condition, error) {

	property, expr, found := strings.Cut(text, "=")
	if !found || property == "" || expr == "" {
		return ops.Condition{}, fmt.Errorf("invalid condition '%s', expected property=value", text)
	}

	cond := ops.Condition{Property: strings.TrimSpace(property)}

	from, to, isRange := strings.Cut(expr, "..")

	value, err := parseValue(from)
	if err != nil {
		return cond, err
	}
	cond.Value = value

	if isRange {
		cond.Operation = ops.InRange
		if cond.To, err = parseValue(to); err != nil {
			return cond, err
		}
	}

	return cond, nil
}
