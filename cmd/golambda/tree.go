package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandrolain/golambda/pkg/hyperlambda"
)

func newTreeCmd(a *app) *cobra.Command {
	var file, inputFormat string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a document as a hyperlambda node tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := readTree(cmd, file, inputFormat)
			if err != nil {
				return err
			}
			a.logger.Debug("document loaded", "file", file, "nodes", countNodes(root)-1)
			s, err := hyperlambda.Format(root)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Document to print (default: stdin)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Document format: json, yaml or hyperlambda")
	return cmd
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
