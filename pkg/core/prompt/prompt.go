// Package prompt is a small prompt library for the classification oracle.
// Prompts live in JSON files and are loaded at runtime, so the wording sent
// to the model can be tuned without a rebuild.
package prompt

// Template is one reusable prompt with its metadata.
type Template struct {
	ID             string `json:"id"`                   // e.g. "classification.columns"
	Name           string `json:"name"`                 // human-readable name
	Category       string `json:"category"`             // e.g. "classification"
	Description    string `json:"description"`          // purpose of the prompt
	SystemPrompt   string `json:"system_prompt"`        // system prompt content
	UserPromptTmpl string `json:"user_prompt_template"` // Go template for the user prompt
	Version        string `json:"version"`              // tracks wording changes
}

// ExecutionContext holds the runtime values substituted into a template.
type ExecutionContext struct {
	Variables map[string]interface{}
}

// NewContext creates an empty execution context.
func NewContext() *ExecutionContext {
	return &ExecutionContext{Variables: make(map[string]interface{})}
}

// Set adds a variable and returns the context for chaining.
func (c *ExecutionContext) Set(key string, value interface{}) *ExecutionContext {
	c.Variables[key] = value
	return c
}
