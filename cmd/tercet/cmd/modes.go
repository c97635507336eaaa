package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/engine"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Show which model runs each stage per workflow mode",
	RunE:  runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

func runModes(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selector, err := engine.NewModeSelector(cfg)
	if err != nil {
		return err
	}

	header := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Faint(true)
	if noColor {
		header = lipgloss.NewStyle()
		dim = lipgloss.NewStyle()
	}

	for _, mode := range core.AllModes() {
		fmt.Fprintf(os.Stdout, "%s  %s\n", header.Render(mode.String()), dim.Render(mode.Description()))
		configs, err := selector.StageConfigs(mode)
		if err != nil {
			return err
		}
		for _, step := range configs {
			fmt.Fprintf(os.Stdout, "  %-9s %s/%s\n", step.Stage, step.Provider, step.Model)
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
