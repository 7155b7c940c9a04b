package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// mockParseReader is a test double for ParseReader.
type mockParseReader struct {
	css  []byte
	err  error
	path string
}

func (m *mockParseReader) ReadFile(_ context.Context, path string) ([]byte, error) {
	m.path = path
	return m.css, m.err
}

func runParse(t *testing.T, reader ParseReader, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	c := NewParseCmd(reader)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs(args)
	err = c.Execute()
	return out.String(), errOut.String(), err
}

func TestNewParseCmd_HasFormatFlag(t *testing.T) {
	c := NewParseCmd(nil)
	f := c.Flags().Lookup("format")
	if f == nil {
		t.Fatal("expected --format flag on parse command")
	}
	if f.DefValue != "json" {
		t.Errorf("--format default = %q, want json", f.DefValue)
	}
}

func TestNewParseCmd_OutputsJSONTree(t *testing.T) {
	reader := &mockParseReader{css: []byte("a {\n  color: red !important;\n}\n/* note */\n")}
	out, _, err := runParse(t, reader, "style.css")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.path != "style.css" {
		t.Errorf("read %q, want style.css", reader.path)
	}

	var tree nodeDump
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out)
	}
	if tree.Type != "root" || len(tree.Nodes) != 2 {
		t.Fatalf("root = %s with %d nodes, want root with 2", tree.Type, len(tree.Nodes))
	}
	rule := tree.Nodes[0]
	if rule.Type != "rule" || rule.Selector != "a" {
		t.Errorf("first node = %s %q, want rule \"a\"", rule.Type, rule.Selector)
	}
	if rule.Start == nil || rule.Start.Line != 1 || rule.Start.Column != 1 {
		t.Errorf("rule start = %+v, want 1:1", rule.Start)
	}
	decl := rule.Nodes[0]
	if decl.Prop != "color" || decl.Value != "red" || !decl.Important {
		t.Errorf("declaration = %+v, want color: red !important", decl)
	}
	if decl.Raws["before"] != "\n  " {
		t.Errorf("declaration before = %q, want %q", decl.Raws["before"], "\n  ")
	}
	if c := tree.Nodes[1]; c.Type != "comment" || c.Text != "note" {
		t.Errorf("second node = %s %q, want comment \"note\"", c.Type, c.Text)
	}
}

func TestNewParseCmd_OutputsYAMLTree(t *testing.T) {
	reader := &mockParseReader{css: []byte("@import 'a.css';")}
	out, _, err := runParse(t, reader, "--format", "yaml", "style.css")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var tree nodeDump
	if err := yaml.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("output is not valid YAML: %v\noutput: %s", err, out)
	}
	if len(tree.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(tree.Nodes))
	}
	if at := tree.Nodes[0]; at.Type != "atrule" || at.Name != "import" || at.Params != "'a.css'" {
		t.Errorf("node = %+v, want atrule import 'a.css'", at)
	}
}

func TestNewParseCmd_Errors(t *testing.T) {
	tests := []struct {
		name       string
		reader     *mockParseReader
		args       []string
		wantErr    string
		wantStderr string
	}{
		{
			name:    "unknown format",
			reader:  &mockParseReader{css: []byte("a{}")},
			args:    []string{"--format", "xml", "a.css"},
			wantErr: `unknown format "xml"`,
		},
		{
			name:    "read failure",
			reader:  &mockParseReader{err: errors.New("permission denied")},
			args:    []string{"a.css"},
			wantErr: "reading stylesheet: permission denied",
		},
		{
			name:       "syntax error",
			reader:     &mockParseReader{css: []byte("a{")},
			args:       []string{"a.css"},
			wantErr:    "parsing stylesheet: a.css:1:1: Unclosed block",
			wantStderr: "error: a.css:1:1: Unclosed block\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := runParse(t, tt.reader, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want one containing %q", err, tt.wantErr)
			}
			if out != "" {
				t.Errorf("stdout = %q, want nothing on failure", out)
			}
			if tt.wantStderr != "" && !strings.HasPrefix(errOut, tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", errOut, tt.wantStderr)
			}
		})
	}
}

func TestNewParseCmd_RequiresOneFile(t *testing.T) {
	_, _, err := runParse(t, &mockParseReader{}, "a.css", "b.css")
	if err == nil {
		t.Error("expected error with two file arguments")
	}
}
