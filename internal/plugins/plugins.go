// Package plugins holds the built-in plugins that a run configuration can
// refer to by name.
package plugins

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/eykd/postcss-go/ast"
	"github.com/eykd/postcss-go/processor"
)

// Factory builds a plugin from its configuration options.
type Factory func(opts map[string]any) (processor.Pluggable, error)

var registry = map[string]Factory{
	"remove-decls":   RemoveDecls,
	"rename-prop":    RenameProp,
	"strip-comments": StripComments,
	"warn-important": WarnImportant,
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the registered plugin names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RemoveDecls removes declarations whose property equals the "prop" option
// or matches the "pattern" regular expression.
func RemoveDecls(opts map[string]any) (processor.Pluggable, error) {
	prop, err := stringOpt(opts, "prop")
	if err != nil {
		return nil, err
	}
	pattern, err := stringOpt(opts, "pattern")
	if err != nil {
		return nil, err
	}

	var filter ast.Filter
	switch {
	case prop != "" && pattern != "":
		return nil, fmt.Errorf("remove-decls: options prop and pattern are exclusive")
	case prop != "":
		filter = ast.Exact(prop)
	case pattern != "":
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("remove-decls: invalid pattern: %w", err)
		}
		filter = ast.Pattern(re)
	default:
		return nil, fmt.Errorf("remove-decls: option prop or pattern is required")
	}

	return &processor.Plugin{
		Name: "remove-decls",
		Once: func(root ast.Container, _ *processor.Result) processor.Outcome {
			return processor.Done(root.WalkDecls(filter, func(d *ast.Declaration, _ int) error {
				d.Remove()
				return nil
			}))
		},
	}, nil
}

// RenameProp renames every declaration property "from" to "to".
func RenameProp(opts map[string]any) (processor.Pluggable, error) {
	from, err := stringOpt(opts, "from")
	if err != nil {
		return nil, err
	}
	to, err := stringOpt(opts, "to")
	if err != nil {
		return nil, err
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("rename-prop: options from and to are required")
	}

	return &processor.Plugin{
		Name: "rename-prop",
		Declaration: func(d *ast.Declaration, _ *processor.Result) processor.Outcome {
			if d.Prop == from {
				d.Prop = to
			}
			return processor.Done(nil)
		},
	}, nil
}

// StripComments removes comments. With "preserveImportant" set, comments
// starting with "!" are kept.
func StripComments(opts map[string]any) (processor.Pluggable, error) {
	keep, err := boolOpt(opts, "preserveImportant")
	if err != nil {
		return nil, err
	}

	return &processor.Plugin{
		Name: "strip-comments",
		Comment: func(c *ast.Comment, _ *processor.Result) processor.Outcome {
			if keep && strings.HasPrefix(c.Text, "!") {
				return processor.Done(nil)
			}
			c.Remove()
			return processor.Done(nil)
		},
	}, nil
}

// WarnImportant leaves a warning on every declaration marked !important.
func WarnImportant(map[string]any) (processor.Pluggable, error) {
	return &processor.Plugin{
		Name: "warn-important",
		Declaration: func(d *ast.Declaration, res *processor.Result) processor.Outcome {
			if d.Important {
				res.Warn("avoid !important on "+d.Prop, processor.WarningOptions{Node: d, Word: "important"})
			}
			return processor.Done(nil)
		},
	}, nil
}

func stringOpt(opts map[string]any, key string) (string, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %s: want a string, got %T", key, v)
	}
	return s, nil
}

func boolOpt(opts map[string]any, key string) (bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("option %s: want a boolean, got %T", key, v)
	}
	return b, nil
}
