package tokenizer_test

import (
	"errors"
	"io"
	"testing"

	"github.com/eykd/postcss-go/ast"
	"github.com/eykd/postcss-go/tokenizer"
)

type tok struct {
	kind  tokenizer.Kind
	value string
}

func tokenize(t *testing.T, css string) []tok {
	t.Helper()
	var out []tok
	for tk, err := range tokenizer.New(ast.NewInput(css, "")).All() {
		if err != nil {
			t.Fatalf("tokenize(%q) error = %v", css, err)
		}
		out = append(out, tok{tk.Kind, tk.Value})
	}
	return out
}

func TestNext_Tokens(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want []tok
	}{
		{
			name: "empty",
			css:  "",
			want: nil,
		},
		{
			name: "rule",
			css:  "a{b:c;}",
			want: []tok{
				{tokenizer.Word, "a"}, {tokenizer.OpenCurly, "{"}, {tokenizer.Word, "b"},
				{tokenizer.Colon, ":"}, {tokenizer.Word, "c"}, {tokenizer.Semicolon, ";"},
				{tokenizer.CloseCurly, "}"},
			},
		},
		{
			name: "whitespace run",
			css:  " \n\t a",
			want: []tok{{tokenizer.Space, " \n\t "}, {tokenizer.Word, "a"}},
		},
		{
			name: "at-word",
			css:  "@media screen",
			want: []tok{{tokenizer.AtWord, "@media"}, {tokenizer.Space, " "}, {tokenizer.Word, "screen"}},
		},
		{
			name: "at-word ends at brace",
			css:  "@page{",
			want: []tok{{tokenizer.AtWord, "@page"}, {tokenizer.OpenCurly, "{"}},
		},
		{
			name: "url with spaces",
			css:  "url(a b.png)",
			want: []tok{{tokenizer.Word, "url"}, {tokenizer.Brackets, "(a b.png)"}},
		},
		{
			name: "simple brackets",
			css:  "(min-width: 10px)",
			want: []tok{{tokenizer.Brackets, "(min-width: 10px)"}},
		},
		{
			name: "brackets with quote become paren",
			css:  "('a')",
			want: []tok{
				{tokenizer.OpenParen, "("}, {tokenizer.String, "'a'"}, {tokenizer.CloseParen, ")"},
			},
		},
		{
			name: "escaped quote in string",
			css:  `"a\"b"`,
			want: []tok{{tokenizer.String, `"a\"b"`}},
		},
		{
			name: "comment",
			css:  "a/* b */c",
			want: []tok{{tokenizer.Word, "a"}, {tokenizer.Comment, "/* b */"}, {tokenizer.Word, "c"}},
		},
		{
			name: "hex escape with trailing space",
			css:  `\31 a`,
			want: []tok{{tokenizer.Word, `\31 `}, {tokenizer.Word, "a"}},
		},
		{
			name: "word stops at bang",
			css:  "red!important",
			want: []tok{{tokenizer.Word, "red"}, {tokenizer.Word, "!important"}},
		},
		{
			name: "square brackets",
			css:  "[a]",
			want: []tok{{tokenizer.OpenSquare, "["}, {tokenizer.Word, "a"}, {tokenizer.CloseSquare, "]"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(t, tt.css)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %v %q, want %v %q", i, got[i].kind, got[i].value, tt.want[i].kind, tt.want[i].value)
				}
			}
		})
	}
}

func TestNext_Offsets(t *testing.T) {
	tz := tokenizer.New(ast.NewInput("ab /*c*/", ""))
	want := []struct{ start, end int }{{0, 1}, {2, 2}, {3, 7}}
	for i, w := range want {
		tk, err := tz.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if tk.Start != w.start || tk.End != w.end {
			t.Errorf("token %d span = [%d,%d], want [%d,%d]", i, tk.Start, tk.End, w.start, w.end)
		}
	}
	if _, err := tz.Next(); err != io.EOF {
		t.Errorf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestBack(t *testing.T) {
	tz := tokenizer.New(ast.NewInput("a b", ""))
	first, _ := tz.Next()
	tz.Back(first)
	if tz.EOF() {
		t.Fatal("EOF() = true with a token pushed back")
	}
	again, err := tz.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if again != first {
		t.Errorf("Next() after Back = %v, want %v", again, first)
	}
}

func TestNext_Unclosed(t *testing.T) {
	tests := []struct {
		name    string
		css     string
		want    string
		line    int
		column  int
		skipped int // tokens before the failing one
	}{
		{name: "string", css: "a 'bc", want: "Unclosed string", line: 1, column: 3, skipped: 2},
		{name: "comment", css: "\n/* x", want: "Unclosed comment", line: 2, column: 1, skipped: 1},
		{name: "url bracket", css: "url(a.png", want: "Unclosed bracket", line: 1, column: 4, skipped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tz := tokenizer.New(ast.NewInput(tt.css, ""))
			for range tt.skipped {
				if _, err := tz.Next(); err != nil {
					t.Fatalf("Next() error = %v", err)
				}
			}
			_, err := tz.Next()
			var se *ast.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Next() error = %v, want *ast.SyntaxError", err)
			}
			if se.Reason != tt.want || se.Line != tt.line || se.Column != tt.column {
				t.Errorf("error = %q at %d:%d, want %q at %d:%d", se.Reason, se.Line, se.Column, tt.want, tt.line, tt.column)
			}
		})
	}
}
