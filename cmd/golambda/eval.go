package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sandrolain/golambda/pkg/loader"
	"github.com/sandrolain/golambda/pkg/node"
)

type evalFlags struct {
	file        string
	inputFormat string
	output      string
}

func newEvalCmd(a *app) *cobra.Command {
	f := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression against a document",
		Long: `Evaluate an expression against a document read from --file, or from
standard input when no file is given. The document format follows the file
extension unless --input-format is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := readTree(cmd, f.file, f.inputFormat)
			if err != nil {
				return err
			}
			return a.runEval(cmd.Context(), cmd.OutOrStdout(), args[0], root, f.output)
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Document to evaluate against (default: stdin)")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "Document format: json, yaml or hyperlambda")
	cmd.Flags().StringVarP(&f.output, "format", "o", "text", "Output format: text or json")
	return cmd
}

func (a *app) runEval(ctx context.Context, w io.Writer, expression string, root *node.Node, output string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ev := a.evaluator()
	m, err := ev.EvaluateString(ctx, expression, root)
	if err != nil {
		return err
	}
	values, err := m.Values()
	if err != nil {
		return err
	}

	switch output {
	case "json":
		out, err := marshalValues(ev.Coercer(), values)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "text", "":
		for _, v := range values {
			s, err := ev.Coercer().ToString(v)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// readTree loads the document named by path, or standard input for "" and
// "-". An empty format is derived from the file extension; standard input
// defaults to hyperlambda.
func readTree(cmd *cobra.Command, path, format string) (*node.Node, error) {
	if path != "" && path != "-" && format == "" {
		return loader.LoadFile(path)
	}
	f := loader.FormatHyperlambda
	if format != "" {
		var err error
		if f, err = loader.ParseFormat(format); err != nil {
			return nil, err
		}
	}
	if path != "" && path != "-" {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		return loader.Load(data, f)
	}
	return loader.LoadReader(cmd.InOrStdin(), f)
}
