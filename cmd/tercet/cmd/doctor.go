package cmd

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/tercet-ai/tercet/internal/config"
	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/pricing"
	"github.com/tercet-ai/tercet/internal/prompt"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and environment",
	Long:  "Verify configuration, provider credentials, prompt templates and pricing coverage.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfigUnvalidated()
	if err != nil {
		return err
	}

	ok := true

	fmt.Println("Checking configuration...")
	fmt.Println()
	if issues := cfg.Validate(); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Printf("  ✗ %s\n", issue)
		}
		ok = false
	} else {
		fmt.Println("  ✓ configuration valid")
	}
	fmt.Println()

	fmt.Println("Checking providers...")
	fmt.Println()
	for name, pc := range cfg.Providers {
		if strings.TrimSpace(pc.APIKey) == "" {
			fmt.Printf("  ✗ %s: api key missing (set TERCET_PROVIDERS_%s_API_KEY)\n",
				name, strings.ToUpper(name))
			ok = false
		} else {
			fmt.Printf("  ✓ %s (%s)\n", name, pc.Kind)
		}
	}
	fmt.Println()

	fmt.Println("Checking prompt templates...")
	fmt.Println()
	renderer, err := prompt.NewRenderer()
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		ok = false
	} else {
		for _, stage := range core.AllStages() {
			sc, scErr := cfg.StageConfigFor(stage)
			if scErr != nil {
				fmt.Printf("  ✗ %s: %v\n", stage, scErr)
				ok = false
				continue
			}
			if renderer.Has(sc.Template) {
				fmt.Printf("  ✓ %s (%s)\n", stage, sc.Template)
			} else {
				fmt.Printf("  ✗ %s: template %q not found\n", stage, sc.Template)
				ok = false
			}
		}
	}
	fmt.Println()

	fmt.Println("Checking pricing coverage...")
	fmt.Println()
	table := pricing.NewTable(cfg.Pricing)
	for _, tier := range []struct {
		name string
		ref  config.ModelRef
	}{
		{"reasoning", cfg.Tiers.Reasoning},
		{"fast", cfg.Tiers.Fast},
	} {
		if table.Known(tier.ref.Provider, tier.ref.Model) {
			fmt.Printf("  ✓ %s: %s/%s\n", tier.name, tier.ref.Provider, tier.ref.Model)
		} else {
			// Missing prices cost zero, runs still work
			fmt.Printf("  ○ %s: %s/%s has no configured rates, costs will read as $0\n",
				tier.name, tier.ref.Provider, tier.ref.Model)
		}
	}
	fmt.Println()

	printSystemInfo()

	if !ok {
		return fmt.Errorf("environment check failed")
	}
	fmt.Println("Everything looks good")
	return nil
}

// printSystemInfo is best-effort: a metrics read failing is not an
// environment problem.
func printSystemInfo() {
	fmt.Println("System...")
	fmt.Println()
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("  memory: %.1f/%.1f GB used (%.0f%%)\n",
			float64(vm.Used)/1024/1024/1024,
			float64(vm.Total)/1024/1024/1024,
			vm.UsedPercent)
	}
	if avg, err := load.Avg(); err == nil {
		fmt.Printf("  load:   %.2f %.2f %.2f\n", avg.Load1, avg.Load5, avg.Load15)
	}
	fmt.Println()
}
