package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandrolain/golambda/pkg/literal"
	"github.com/sandrolain/golambda/pkg/parser"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <expression>",
		Short: "Print the token stream of an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := parser.Tokenize(args[0])
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range tokens {
				value := t.Value
				if t.Quoted() {
					value = literal.Quote(value)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Position, t.Type, value)
			}
			if flushErr := tw.Flush(); err == nil {
				err = flushErr
			}
			return err
		},
	}
}
