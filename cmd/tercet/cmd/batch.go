package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/engine"
)

var (
	batchSource  string
	batchTarget  string
	batchMode    string
	batchOutDir  string
	batchResults bool
	batchFormat  string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Translate multiple files concurrently",
	Long: `Batch runs the full pipeline once per input file, with concurrency
bounded by batch.concurrency. Each file produces <stem>.<target>.txt in
the output directory; one failed file does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchSource, "source", "s", "", "source language (required)")
	batchCmd.Flags().StringVarP(&batchTarget, "target", "t", "", "target language (required)")
	batchCmd.Flags().StringVarP(&batchMode, "mode", "m", "hybrid", "workflow mode (reasoning, fast, hybrid)")
	batchCmd.Flags().StringVarP(&batchOutDir, "out-dir", "d", ".", "directory for translated files")
	batchCmd.Flags().BoolVar(&batchResults, "results", false, "also write a workflow result document per file")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "result document format (json, yaml)")

	_ = batchCmd.MarkFlagRequired("source")
	_ = batchCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(_ *cobra.Command, args []string) error {
	mode, err := core.ParseMode(batchMode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One engine for the whole batch: provider clients and their
	// connection pool are shared across files. Per-stage progress comes
	// from the logs; the per-file lines below are the batch progress.
	orch, err := engine.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	type outcome struct {
		file string
		err  error
	}

	var (
		mu       sync.Mutex
		failures []outcome
		done     int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch.Concurrency)

	for _, file := range args {
		file := file
		g.Go(func() error {
			fileErr := translateFile(ctx, orch, file, mode)

			mu.Lock()
			defer mu.Unlock()
			done++
			if fileErr != nil {
				failures = append(failures, outcome{file: file, err: fileErr})
				if !quiet {
					fmt.Fprintf(os.Stderr, "✗ [%d/%d] %s: %v\n", done, len(args), file, fileErr)
				}
				// A failed file is reported, not fatal; cancellation is.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}
			if !quiet {
				fmt.Fprintf(os.Stderr, "✓ [%d/%d] %s\n", done, len(args), file)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failures), len(args))
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "translated %d files into %s\n", len(args), batchOutDir)
	}
	return nil
}

func translateFile(ctx context.Context, orch *engine.Orchestrator, file string, mode core.WorkflowMode) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	req := core.NewTranslationRequest(string(data), batchSource, batchTarget).
		WithMetadata(map[string]string{"title": stem})

	result, err := orch.Execute(ctx, req, mode)
	if batchResults && result != nil {
		ext := batchFormat
		if ext == "" {
			ext = "json"
		}
		resultPath := filepath.Join(batchOutDir, stem+".result."+ext)
		if werr := writeResultFile(resultPath, result, batchFormat); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return err
	}

	lang := strings.ReplaceAll(strings.ToLower(req.TargetLang), " ", "-")
	outPath := filepath.Join(batchOutDir, stem+"."+lang+".txt")
	return writeTextFile(outPath, result.FinalTranslation())
}
