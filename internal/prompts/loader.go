// Package prompts holds the analysis prompt templates. Templates live in
// embedded JSON files keyed by prompt name and use {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Set is one parsed prompt file, keyed by prompt name.
type Set map[string]string

// loaders memoizes one parse per file name.
var loaders sync.Map // string -> func() (Set, error)

// Load returns the parsed prompt file. The file is read and decoded once per
// process; later calls share the result, including a decode error.
func Load(filename string) (Set, error) {
	fn, _ := loaders.LoadOrStore(filename, sync.OnceValues(func() (Set, error) {
		return parse(filename)
	}))
	return fn.(func() (Set, error))()
}

func parse(filename string) (Set, error) {
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	return set, nil
}

// Get retrieves a prompt by filename (e.g. "analysis.json") and key.
func Get(filename, key string) (string, error) {
	set, err := Load(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Keys returns the prompt names of a file, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Format substitutes {{.Key}} placeholders with values from data.
// Placeholders without a value are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{{."+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Render looks up a template and fills it with data in one step.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(template, data), nil
}
