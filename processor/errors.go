package processor

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/eykd/postcss-go/ast"
)

// PluginError wraps an error returned by a plugin hook.
type PluginError struct {
	Plugin string
	Err    error
}

func (e *PluginError) Error() string {
	if e.Plugin == "" {
		return e.Err.Error()
	}
	return e.Plugin + ": " + e.Err.Error()
}

func (e *PluginError) Unwrap() error { return e.Err }

// pluginError attributes err to plugin p. Syntax errors raised against a
// node keep their type and gain the plugin name.
func pluginError(p *Plugin, err error) error {
	var se *ast.SyntaxError
	if errors.As(err, &se) {
		if se.Plugin == "" {
			se.Plugin = p.Name
		}
		return err
	}
	if p.Version != "" {
		checkVersion(p)
	}
	return &PluginError{Plugin: p.Name, Err: err}
}

// checkVersion logs a notice when p targets a runtime whose major version
// differs, or whose minor version is newer than this one.
func checkVersion(p *Plugin) {
	want, err := semver.NewVersion(p.Version)
	if err != nil {
		return
	}
	have := semver.MustParse(Version)
	if want.Major() != have.Major() || want.Minor() > have.Minor() {
		logWarn(fmt.Sprintf("Unknown error from PostCSS plugin. Your current PostCSS version is %s, but %s uses %s. Perhaps this is the source of the error below.",
			Version, p.Name, p.Version))
	}
}
