package main

import (
	"fmt"
	"os"

	"github.com/dot5enko/metatable/io"
	"github.com/dot5enko/metatable/packer"
	"github.com/dot5enko/metatable/schema"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newPackCmd(a *app) *cobra.Command {

	var rowsPath, output string

	cmd := &cobra.Command{
		Use:   "pack --rows rows.yaml -o table.mtb",
		Short: "Pack a YAML list of rows into a bundle",
		Long: `Pack reads a YAML list with one mapping per row, keyed by property id, and
writes every property of the class as packed columns. Missing keys take the
property default. Normalized properties are given in their normalized domain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {

			class, err := a.class()
			if err != nil {
				return err
			}

			offsetType, err := a.offsetType()
			if err != nil {
				return err
			}

			compression, err := io.ParseCompression(a.config.GetString(cfgKeyCompression))
			if err != nil {
				return err
			}

			rows, err := readRows(rowsPath, class)
			if err != nil {
				return err
			}

			p, err := packer.New(class, len(rows), offsetType)
			if err != nil {
				return err
			}

			for _, prop := range class.Properties {
				column := make([]any, len(rows))
				for i, row := range rows {
					column[i] = row[prop.Id]
				}

				if err := p.AddColumn(prop.Id, column); err != nil {
					return err
				}
			}

			packed, err := p.Build()
			if err != nil {
				return err
			}

			bundle := &io.Bundle{
				Uid:         uuid.New(),
				Count:       packed.Count,
				Compression: compression,
				BufferViews: packed.BufferViews,
			}

			if err := io.WriteBundleFile(output, bundle); err != nil {
				return err
			}

			a.logger.Info("packed table",
				zap.String("class", class.Id),
				zap.Int("rows", bundle.Count),
				zap.Int("buffer_views", len(bundle.BufferViews)),
				zap.Stringer("uid", bundle.Uid),
			)

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "packed %d rows of '%s' into %s\n", bundle.Count, class.Id, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&rowsPath, "rows", "", "YAML list of rows")
	cmd.Flags().StringVarP(&output, "output", "o", "", "bundle file to write")
	cmd.Flags().String("compression", "", "buffer view compression (none, lz4)")
	_ = cmd.MarkFlagRequired("rows")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// readRows parses a rows document, rejecting keys the class does not declare.
func readRows(path string, class *schema.Class) ([]map[string]any, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unable to parse rows %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no rows", path)
	}

	for i, row := range rows {
		for id := range row {
			if _, declared := class.Property(id); !declared {
				return nil, fmt.Errorf("row %d: %w: class '%s' has no property '%s'", i, packer.ErrUnknownProperty, class.Id, id)
			}
		}
	}

	return rows, nil
}

// parseValue reads a single YAML scalar or flow sequence from the command line.
func parseValue(text string) (any, error) {
	var value any
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("unable to parse value '%s': %w", text, err)
	}
	if value == nil {
		return nil, fmt.Errorf("empty value '%s'", text)
	}
	return value, nil
}
