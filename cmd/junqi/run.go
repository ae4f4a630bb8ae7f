package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gojunqi/pkg/batch"
	"github.com/sandrolain/gojunqi/pkg/codec"
	"github.com/sandrolain/gojunqi/pkg/compiler"
)

type runOptions struct {
	tree    string
	params  []string
	args    []string
	records string
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run --tree FILE [data...]",
		Short: "Run a query tree against one or more data files",
		Long: `Run decodes a query tree (JSON, or YAML for .yaml/.yml files), compiles it
with the configured extensions and runs it against every data file. With no
data file, or "-", records are read from standard input. Each data file must
hold a list of records unless --records selects them with a JSONPath.

One JSON document is written per data file, in argument order.`,
		RunE: func(cmd *cobra.Command, files []string) error {
			return a.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts, files)
		},
	}
	cmd.Flags().StringVarP(&opts.tree, "tree", "t", "", "query tree file")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "named parameter as name=value (value parsed as JSON when possible)")
	cmd.Flags().StringArrayVarP(&opts.args, "arg", "a", nil, "positional parameter (value parsed as JSON when possible)")
	cmd.Flags().StringVarP(&opts.records, "records", "r", "", "JSONPath selecting the records inside each data document")
	_ = cmd.MarkFlagRequired("tree")
	return cmd
}

func (a *app) run(ctx context.Context, stdin io.Reader, out io.Writer, opts *runOptions, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := os.ReadFile(opts.tree)
	if err != nil {
		return fmt.Errorf("read tree: %w", err)
	}
	tree, err := codec.DecodeTree(b, codec.FormatFor(opts.tree))
	if err != nil {
		return fmt.Errorf("decode tree %s: %w", opts.tree, err)
	}

	params, err := parseParams(opts.args, opts.params)
	if err != nil {
		return err
	}

	c, err := a.compiler()
	if err != nil {
		return err
	}
	q, err := c.Compile(tree)
	if err != nil {
		return fmt.Errorf("compile %s: %w", opts.tree, err)
	}

	if len(files) == 0 {
		files = []string{"-"}
	}
	inputs := make([][]interface{}, len(files))
	for i, name := range files {
		if inputs[i], err = readRecords(name, stdin, opts.records); err != nil {
			return err
		}
	}

	results, err := a.execute(ctx, q, inputs, params)
	if err != nil {
		return err
	}
	for i, res := range results {
		if res.Err != nil {
			return fmt.Errorf("run %s: %w", files[i], res.Err)
		}
		doc, err := codec.Marshal(res.Values, a.cfg.Indent)
		if err != nil {
			return fmt.Errorf("encode result of %s: %w", files[i], err)
		}
		if _, err := fmt.Fprintln(out, string(doc)); err != nil {
			return err
		}
	}
	return nil
}

// execute runs q directly for a single input and on the batch runner for
// several.
func (a *app) execute(ctx context.Context, q *compiler.Query, inputs [][]interface{}, params compiler.Params) ([]batch.Result, error) {
	if len(inputs) == 1 {
		values, err := q.Run(ctx, inputs[0], params)
		return []batch.Result{{Values: values, Err: err}}, nil
	}

	r, err := batch.New(a.cfg.Workers, batch.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Release(5 * time.Second); err != nil {
			a.logger.Warn("release worker pool", "error", err)
		}
	}()

	start := time.Now()
	results := r.Run(ctx, q, inputs, params)
	a.logger.Debug("batch complete", "inputs", len(inputs), "workers", r.Workers(), "duration", time.Since(start))
	return results, nil
}

func readRecords(name string, stdin io.Reader, path string) ([]interface{}, error) {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	format := codec.FormatFor(name)
	if path == "" {
		records, err := codec.DecodeData(b, format)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return records, nil
	}

	doc, err := codec.Decode(b, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	records, err := codec.SelectRecords(doc, path)
	if err != nil {
		return nil, fmt.Errorf("select records in %s: %w", name, err)
	}
	return records, nil
}

func parseParams(args, named []string) (compiler.Params, error) {
	var p compiler.Params
	for _, s := range args {
		p.Positional = append(p.Positional, parseValue(s))
	}
	for _, s := range named {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return compiler.Params{}, fmt.Errorf("invalid --param %q: expected name=value", s)
		}
		if p.Named == nil {
			p.Named = make(map[string]interface{})
		}
		p.Named[name] = parseValue(value)
	}
	return p, nil
}

// parseValue reads s as a JSON value, falling back to the raw string.
func parseValue(s string) interface{} {
	v, err := codec.Decode([]byte(s), codec.FormatJSON)
	if err != nil {
		return s
	}
	return v
}
