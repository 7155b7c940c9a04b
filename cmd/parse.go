package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eykd/postcss-go/ast"
	"github.com/eykd/postcss-go/parser"
)

// ParseReader reads the stylesheet for the parse command.
type ParseReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// nodeDump is the output schema of one node for the parse command.
type nodeDump struct {
	Type      string            `json:"type" yaml:"type"`
	Name      string            `json:"name,omitempty" yaml:"name,omitempty"`
	Params    string            `json:"params,omitempty" yaml:"params,omitempty"`
	Selector  string            `json:"selector,omitempty" yaml:"selector,omitempty"`
	Prop      string            `json:"prop,omitempty" yaml:"prop,omitempty"`
	Value     string            `json:"value,omitempty" yaml:"value,omitempty"`
	Important bool              `json:"important,omitempty" yaml:"important,omitempty"`
	Text      string            `json:"text,omitempty" yaml:"text,omitempty"`
	Raws      map[string]string `json:"raws,omitempty" yaml:"raws,omitempty"`
	Start     *positionDump     `json:"start,omitempty" yaml:"start,omitempty"`
	End       *positionDump     `json:"end,omitempty" yaml:"end,omitempty"`
	Nodes     []*nodeDump       `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

type positionDump struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
	Offset int `json:"offset" yaml:"offset"`
}

// NewParseCmd creates the parse subcommand.
func NewParseCmd(reader ParseReader) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "parse <file>",
		Short:        "Parse a stylesheet and print its syntax tree",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q: want json or yaml", format)
			}

			path := args[0]
			data, err := reader.ReadFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("reading stylesheet: %w", err)
			}

			root, err := parser.Parse(string(data), path)
			if err != nil {
				return emitError(cmd, "parsing stylesheet", err)
			}

			if err := writeTree(cmd.OutOrStdout(), format, dumpNode(root)); err != nil {
				return fmt.Errorf("encoding output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "json", "Output format: json or yaml")

	return cmd
}

func writeTree(w io.Writer, format string, tree *nodeDump) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

func dumpNode(n ast.Node) *nodeDump {
	d := &nodeDump{Type: string(n.Type())}
	if raws := n.Raws(); len(raws) > 0 {
		d.Raws = raws
	}
	if src := n.Source(); src != nil {
		d.Start = &positionDump{Line: src.Start.Line, Column: src.Start.Column, Offset: src.Start.Offset}
		if src.End != nil {
			d.End = &positionDump{Line: src.End.Line, Column: src.End.Column, Offset: src.End.Offset}
		}
	}
	switch n := n.(type) {
	case *ast.AtRule:
		d.Name, d.Params = n.Name, n.Params
	case *ast.Rule:
		d.Selector = n.Selector
	case *ast.Declaration:
		d.Prop, d.Value, d.Important = n.Prop, n.Value, n.Important
	case *ast.Comment:
		d.Text = n.Text
	}
	if c, ok := n.(ast.Container); ok {
		for _, child := range c.Nodes() {
			d.Nodes = append(d.Nodes, dumpNode(child))
		}
	}
	return d
}

// fileParseReader implements ParseReader using OS file I/O.
type fileParseReader struct{}

func newDefaultParseReader() *fileParseReader {
	return &fileParseReader{}
}

func (r *fileParseReader) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
