package ast_test

import (
	"regexp"
	"testing"

	"github.com/eykd/postcss-go/ast"
)

var anonymousID = regexp.MustCompile(`^<input css [0-9A-F]{6}>$`)

func TestNewInput_AnonymousID(t *testing.T) {
	a := ast.NewInput("a{}", "")
	b := ast.NewInput("a{}", "")

	if !anonymousID.MatchString(a.ID) {
		t.Errorf("ID = %q, want <input css XXXXXX>", a.ID)
	}
	if a.From() != a.ID {
		t.Errorf("From() = %q, want the anonymous id %q", a.From(), a.ID)
	}
	if a.ID == b.ID {
		t.Errorf("two anonymous inputs share the id %q", a.ID)
	}

	named := ast.NewInput("a{}", "app.css")
	if named.ID != "" || named.From() != "app.css" {
		t.Errorf("named input ID = %q, From() = %q; want no id and app.css", named.ID, named.From())
	}
}

func TestSyntaxError_NamesInput(t *testing.T) {
	anon := ast.NewInput("a{}", "")
	tests := []struct {
		name string
		err  *ast.SyntaxError
		want string
	}{
		{
			name: "file",
			err:  ast.NewInput("a{}", "app.css").Error("bad", 0, -1),
			want: "app.css:1:1: bad",
		},
		{
			name: "anonymous input",
			err:  anon.Error("bad", 1, -1),
			want: anon.ID + ":1:2: bad",
		},
		{
			name: "no input",
			err:  &ast.SyntaxError{Reason: "bad"},
			want: "<css input>: bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewInput_StripsBOM(t *testing.T) {
	in := ast.NewInput("\uFEFFa{}\nb{}", "")
	if !in.HasBOM || in.CSS != "a{}\nb{}" {
		t.Errorf("HasBOM = %v, CSS = %q; want true and the text without the mark", in.HasBOM, in.CSS)
	}
	if pos := in.Position(4); pos.Line != 2 || pos.Column != 1 {
		t.Errorf("Position(4) = %d:%d, want 2:1", pos.Line, pos.Column)
	}
}
