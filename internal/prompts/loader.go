// Package prompts embeds the report prompt templates and expands their
// placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed report.json
var promptFS embed.FS

const promptFile = "report.json"

var (
	loadOnce sync.Once
	catalog  map[string]string
	loadErr  error
)

// Get returns the prompt template stored under key. The template file is
// parsed once and held for the life of the process.
func Get(key string) (string, error) {
	loadOnce.Do(func() {
		data, err := promptFS.ReadFile(promptFile)
		if err != nil {
			loadErr = fmt.Errorf("failed to read prompt file %s: %w", promptFile, err)
			return
		}
		if err := json.Unmarshal(data, &catalog); err != nil {
			loadErr = fmt.Errorf("failed to parse prompt file %s: %w", promptFile, err)
		}
	})
	if loadErr != nil {
		return "", loadErr
	}

	template, ok := catalog[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, promptFile)
	}
	return template, nil
}

// Format expands {{.Key}} placeholders in a template with values from
// data. Placeholders without a matching key are left as-is.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
