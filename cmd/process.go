package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eykd/postcss-go/internal/config"
	"github.com/eykd/postcss-go/processor"
)

// ProcessIO provides file access for the process command.
type ProcessIO interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	// ReadConfig returns an error matching fs.ErrNotExist when the file is
	// missing.
	ReadConfig(ctx context.Context, path string) ([]byte, error)
}

// NewProcessCmd creates the process subcommand.
func NewProcessCmd(fileIO ProcessIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Run stylesheets through the configured plugins",
		Long: "Run each stylesheet through the plugins listed in the run configuration,\n" +
			"followed by any plugins named with --use. Output goes to stdout, or to\n" +
			"files of the same name in --out-dir.",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			configPath, _ := cmd.Flags().GetString("config")
			outDir, _ := cmd.Flags().GetString("out-dir")
			use, _ := cmd.Flags().GetStringSlice("use")
			jobs, _ := cmd.Flags().GetInt("jobs")

			cfg, err := loadConfig(ctx, fileIO, configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return emitError(cmd, "loading config", err)
			}
			extra := make([]config.PluginConfig, 0, len(use))
			for _, name := range use {
				extra = append(extra, config.PluginConfig{Name: name})
			}
			proc, err := cfg.Build(extra...)
			if err != nil {
				return emitError(cmd, "building pipeline", err)
			}

			results, err := processFiles(ctx, fileIO, proc, args, outDir, jobs)
			if err != nil {
				return emitError(cmd, "processing", err)
			}

			for _, res := range results {
				printWarnings(cmd, res.Warnings())
				if outDir == "" {
					if _, err := fmt.Fprint(cmd.OutOrStdout(), res.CSS); err != nil {
						return fmt.Errorf("writing output: %w", err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().String("config", config.DefaultFile, "Run configuration file")
	cmd.Flags().String("out-dir", "", "Write results to this directory instead of stdout")
	cmd.Flags().StringSlice("use", nil, "Additional built-in plugins to apply, in order")
	cmd.Flags().Int("jobs", 4, "Number of files processed concurrently")

	return cmd
}

// loadConfig reads the run configuration. A missing file is only an error
// when it was asked for explicitly.
func loadConfig(ctx context.Context, fileIO ProcessIO, path string, explicit bool) (*config.Config, error) {
	data, err := fileIO.ReadConfig(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return config.Load(data)
}

// processFiles runs every file through proc, at most jobs at a time. Each file
// gets its own result; results are returned in argument order.
func processFiles(ctx context.Context, fileIO ProcessIO, proc *processor.Processor, paths []string, outDir string, jobs int) ([]*processor.Result, error) {
	results := make([]*processor.Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			data, err := fileIO.ReadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			opts := processor.Options{From: path}
			if outDir != "" {
				opts.To = filepath.Join(outDir, filepath.Base(path))
			}
			lr, err := proc.Process(data, opts)
			if err != nil {
				return err
			}
			res, err := lr.Async(ctx)
			if err != nil {
				return err
			}
			if opts.To != "" {
				if err := fileIO.WriteFile(ctx, opts.To, []byte(res.CSS)); err != nil {
					return fmt.Errorf("writing %s: %w", opts.To, err)
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fileProcessIO implements ProcessIO using OS file I/O.
type fileProcessIO struct{}

func newDefaultProcessIO() *fileProcessIO {
	return &fileProcessIO{}
}

func (f *fileProcessIO) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f *fileProcessIO) WriteFile(_ context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (f *fileProcessIO) ReadConfig(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
