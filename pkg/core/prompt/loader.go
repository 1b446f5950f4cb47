package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// LoadFromDirectory loads every .json prompt file under dir (recursively)
// into the global registry. Category defaults to the containing folder
// name, ID to <category>.<filename>.
func LoadFromDirectory(dir string) error {
	registry := Get()

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("prompt directory not found: %s", dir)
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var pt Template
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if pt.Category == "" {
			pt.Category = filepath.Base(filepath.Dir(path))
		}
		if pt.ID == "" {
			name := strings.TrimSuffix(filepath.Base(path), ".json")
			pt.ID = pt.Category + "." + name
		}

		return registry.Register(&pt)
	})
}

// RenderUserPrompt executes the user prompt template with the given context.
func RenderUserPrompt(pt *Template, ctx *ExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	tmpl, err := template.New(pt.ID).Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.Variables); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
