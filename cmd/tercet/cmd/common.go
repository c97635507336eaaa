package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/tercet-ai/tercet/internal/config"
	"github.com/tercet-ai/tercet/internal/logging"
)

// loadConfig loads configuration honoring the global --config flag and
// the flag bindings on the shared viper instance, then validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := loadConfigUnvalidated()
	if err != nil {
		return nil, err
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "config: %s\n", issue)
		}
		return nil, fmt.Errorf("invalid configuration (%d issues)", len(issues))
	}
	return cfg, nil
}

// loadConfigUnvalidated loads configuration without running validation.
// The doctor command reports issues itself instead of aborting on them.
func loadConfigUnvalidated() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader = loader.WithConfigFile(cfgFile)
	}
	return loader.Load()
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// readInput reads the source text from a file argument, or from stdin
// when no argument (or "-") is given.
func readInput(args []string) (text string, source string, err error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading input: %w", err)
		}
		return string(data), args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "stdin", nil
}

// requestMetadata assembles optional request metadata from flags.
func requestMetadata(title, author string) map[string]string {
	meta := make(map[string]string, 2)
	if strings.TrimSpace(title) != "" {
		meta["title"] = strings.TrimSpace(title)
	}
	if strings.TrimSpace(author) != "" {
		meta["author"] = strings.TrimSpace(author)
	}
	return meta
}
