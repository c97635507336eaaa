package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/tercet-ai/tercet/internal/core"
)

// writeResultFile writes the full workflow result document atomically.
// A reader never sees a half-written file, even if the process dies
// mid-write.
func writeResultFile(path string, result *core.WorkflowResult, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(result)
	case "json", "":
		data, err = json.MarshalIndent(result, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown result format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// writeTextFile writes the final translation atomically.
func writeTextFile(path, text string) error {
	if len(text) > 0 && text[len(text)-1] != '\n' {
		text += "\n"
	}
	if err := renameio.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing translation: %w", err)
	}
	return nil
}
