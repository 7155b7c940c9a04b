package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"parse", "process"} {
		var found bool
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q subcommand registered on root command", name)
		}
	}
}

func TestBuildCommandTree_AllCommandsHaveRunE(t *testing.T) {
	root := NewRootCmd()
	for _, sub := range root.Commands() {
		c := sub
		t.Run(c.Name(), func(t *testing.T) {
			if c.RunE == nil {
				t.Errorf("command %q has nil RunE; must wire RunE for error visibility", c.Name())
			}
		})
	}
}

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "pcss") {
		t.Errorf("expected help output to contain \"pcss\", got: %s", out.String())
	}
}

func TestEmitError_WritesStderrAndWraps(t *testing.T) {
	c := &cobra.Command{}
	errOut := new(bytes.Buffer)
	c.SetErr(errOut)
	cause := errors.New("disk full")

	err := emitError(c, "writing output", cause)

	if !errors.Is(err, cause) {
		t.Errorf("returned error %v does not wrap the cause", err)
	}
	if got, want := err.Error(), "writing output: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := errOut.String(), "error: disk full\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}
