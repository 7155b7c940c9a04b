package config

import (
	"slices"
	"strings"
	"testing"

	"github.com/eykd/postcss-go/processor"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []string
		wantErr string
	}{
		{name: "empty file", data: "", want: nil},
		{
			name: "plugins in order",
			data: "plugins:\n  - name: strip-comments\n  - name: remove-decls\n    options:\n      prop: color\n",
			want: []string{"strip-comments", "remove-decls"},
		},
		{name: "unknown key", data: "plugin:\n  - name: x\n", wantErr: "field plugin not found"},
		{name: "missing name", data: "plugins:\n  - options: {}\n", wantErr: "plugin 1 has no name"},
		{name: "not yaml", data: "plugins: [\n", wantErr: "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load([]byte(tt.data))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want one containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			var got []string
			for _, p := range cfg.Plugins {
				got = append(got, p.Name)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("plugins = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_Options(t *testing.T) {
	cfg, err := Load([]byte("plugins:\n  - name: strip-comments\n    options:\n      preserveImportant: true\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Plugins[0].Options["preserveImportant"]; got != true {
		t.Errorf("preserveImportant = %v (%T), want true", got, got)
	}
}

func TestBuild(t *testing.T) {
	cfg, err := Load([]byte("plugins:\n  - name: remove-decls\n    options:\n      prop: one\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p, err := cfg.Build(PluginConfig{Name: "rename-prop", Options: map[string]any{"from": "two", "to": "three"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var names []string
	for _, pl := range p.Plugins() {
		names = append(names, pl.Name)
	}
	if want := []string{"remove-decls", "rename-prop"}; !slices.Equal(names, want) {
		t.Errorf("plugins = %v, want %v", names, want)
	}

	lr, err := p.Process("a{ one: 1; two: 2 }", processor.Options{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got, want := lr.String(), "a{ three: 2 }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "unknown plugin",
			cfg:     Config{Plugins: []PluginConfig{{Name: "nope"}}},
			wantErr: `unknown plugin "nope" (available: [remove-decls rename-prop strip-comments warn-important])`,
		},
		{
			name:    "bad options",
			cfg:     Config{Plugins: []PluginConfig{{Name: "remove-decls"}}},
			wantErr: "plugin remove-decls: remove-decls: option prop or pattern is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Build() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
