package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/engine"
	"github.com/tercet-ai/tercet/internal/events"
)

var (
	translateSource string
	translateTarget string
	translateMode   string
	translateTitle  string
	translateAuthor string
	translateOut    string
	translateResult string
	translateFormat string
)

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Translate a text through the draft/critique/revision pipeline",
	Long: `Translate reads the source text from a file (or stdin when no file or
"-" is given), runs the three-stage pipeline and prints the final
translation to stdout. Progress and metrics go to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateSource, "source", "s", "", "source language (required)")
	translateCmd.Flags().StringVarP(&translateTarget, "target", "t", "", "target language (required)")
	translateCmd.Flags().StringVarP(&translateMode, "mode", "m", "hybrid", "workflow mode (reasoning, fast, hybrid)")
	translateCmd.Flags().StringVar(&translateTitle, "title", "", "work title, passed to the prompts")
	translateCmd.Flags().StringVar(&translateAuthor, "author", "", "author name, passed to the prompts")
	translateCmd.Flags().StringVarP(&translateOut, "output", "o", "", "write the final translation to a file instead of stdout")
	translateCmd.Flags().StringVar(&translateResult, "result", "", "write the full workflow result document to a file")
	translateCmd.Flags().StringVar(&translateFormat, "format", "json", "result document format (json, yaml)")

	_ = translateCmd.MarkFlagRequired("source")
	_ = translateCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(translateCmd)
}

func runTranslate(_ *cobra.Command, args []string) error {
	mode, err := core.ParseMode(translateMode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	text, inputName, err := readInput(args)
	if err != nil {
		return err
	}

	req := core.NewTranslationRequest(text, translateSource, translateTarget).
		WithMetadata(requestMetadata(translateTitle, translateAuthor))

	// SIGINT/SIGTERM cancel the run; a stage in a backoff sleep aborts
	// immediately instead of finishing the wait.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.New(64)
	defer bus.Close()

	var renderer *progressRenderer
	if !quiet {
		renderer = newProgressRenderer(bus, os.Stderr, noColor)
		renderer.Start()
		fmt.Fprintf(os.Stderr, "translating %s: %s → %s (%s mode)\n",
			inputName, req.SourceLang, req.TargetLang, mode)
	}

	orch, err := engine.New(cfg, events.NewBusObserver(bus), logger)
	if err != nil {
		return err
	}

	result, runErr := orch.Execute(ctx, req, mode)
	if renderer != nil {
		renderer.Stop()
	}

	// The result document is written even for failed runs: it preserves
	// the completed stages and the failure taxonomy.
	if translateResult != "" && result != nil {
		if err := writeResultFile(translateResult, result, translateFormat); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if translateOut != "" {
		return writeTextFile(translateOut, result.FinalTranslation())
	}
	fmt.Println(result.FinalTranslation())
	return nil
}
