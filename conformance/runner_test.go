// Package conformance_test runs the pcss binary against the fixtures under
// testdata/. Every fixture directory holds an input.css, an optional
// .pcssrc.yml, and the expected outcome:
//
//	expected.css           exact stdout of `pcss process input.css`
//	expected-stderr.txt    lines that must appear on stderr
//	expected-error.txt     the command must fail and stderr must contain this
//
// TestMain builds bin/pcss once into a temporary directory before any test
// runs, then removes the directory on exit.
package conformance_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// pcssBinary is the absolute path to the compiled pcss binary, set by TestMain.
var pcssBinary string

const fixturesDir = "testdata"

func TestMain(m *testing.M) {
	repoRoot, err := filepath.Abs("..")
	if err != nil {
		fmt.Fprintf(os.Stderr, "filepath.Abs: %v\n", err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "conformance-pcss-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "os.MkdirTemp: %v\n", err)
		os.Exit(1)
	}

	pcssBinary = filepath.Join(tmpDir, "pcss")
	build := exec.Command("go", "build", "-o", pcssBinary, ".")
	build.Dir = repoRoot
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "go build failed: %v\n%s\n", err, out)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// Process fixtures
// ---------------------------------------------------------------------------

// TestConformance_ProcessFixtures runs `pcss process` inside every fixture
// directory so that the fixture's .pcssrc.yml is picked up as the default.
func TestConformance_ProcessFixtures(t *testing.T) {
	ran := 0
	for _, fixturePath := range fixtureDirs(t) {
		t.Run(filepath.Base(fixturePath), func(t *testing.T) {
			runProcessFixture(t, fixturePath)
		})
		ran++
	}
	if ran == 0 {
		t.Fatal("no process fixtures found")
	}
}

func runProcessFixture(t *testing.T, fixturePath string) {
	t.Helper()

	cmd := exec.Command(pcssBinary, "process", "input.css")
	cmd.Dir = fixturePath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		t.Fatalf("pcss process: %v", runErr)
	}

	if want, ok := readOptional(t, fixturePath, "expected-error.txt"); ok {
		if runErr == nil {
			t.Fatalf("pcss process succeeded, want failure\nstdout: %s", stdout.String())
		}
		if !strings.Contains(stderr.String(), strings.TrimSpace(want)) {
			t.Errorf("stderr = %q, want it to contain %q", stderr.String(), strings.TrimSpace(want))
		}
		return
	}

	if runErr != nil {
		t.Fatalf("pcss process exited with %v\nstderr: %s", runErr, stderr.String())
	}
	want, ok := readOptional(t, fixturePath, "expected.css")
	if !ok {
		t.Fatal("fixture has neither expected.css nor expected-error.txt")
	}
	if stdout.String() != want {
		t.Errorf("stdout mismatch\ngot:  %q\nwant: %q", stdout.String(), want)
	}
	if lines, ok := readOptional(t, fixturePath, "expected-stderr.txt"); ok {
		for _, line := range strings.Split(strings.TrimSpace(lines), "\n") {
			if !strings.Contains(stderr.String(), line) {
				t.Errorf("stderr = %q, want a line %q", stderr.String(), line)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Parse round trip
// ---------------------------------------------------------------------------

// TestConformance_ParseTreeIsJSON verifies that `pcss parse` accepts every
// fixture input that processes cleanly and prints a root node.
func TestConformance_ParseTreeIsJSON(t *testing.T) {
	for _, fixturePath := range fixtureDirs(t) {
		if _, failing := readOptional(t, fixturePath, "expected-error.txt"); failing {
			continue
		}
		t.Run(filepath.Base(fixturePath), func(t *testing.T) {
			cmd := exec.Command(pcssBinary, "parse", filepath.Join(fixturePath, "input.css"))
			out, err := cmd.Output()
			if err != nil {
				t.Fatalf("pcss parse: %v", err)
			}
			var tree struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(out, &tree); err != nil {
				t.Fatalf("unmarshal pcss parse stdout: %v\nstdout: %s", err, out)
			}
			if tree.Type != "root" {
				t.Errorf("type = %q, want root", tree.Type)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func fixtureDirs(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(fixturesDir)
	if err != nil {
		t.Fatalf("os.ReadDir(%s): %v", fixturesDir, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(fixturesDir, e.Name()))
		}
	}
	return dirs
}

func readOptional(t *testing.T, dir, name string) (string, bool) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return "", false
	}
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data), true
}
