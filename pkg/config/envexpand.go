package config

import (
	"bytes"
	"os"
	"text/template"
)

// ExpandEnv expands environment variables in config content using Go
// templates. Uses {{.VAR_NAME}} syntax to avoid collision with $ in prompt
// text, which routinely contains literal dollar signs and shell fragments.
//
// Examples:
//   - {{.ANTHROPIC_KEY}} → value of ANTHROPIC_KEY environment variable
//   - {{.LLM_HOST}}:{{.LLM_PORT}} → hostname:port with both variables expanded
//   - "costs $5" → preserved literally ($ not touched)
//
// Missing variables expand to empty string (unless the template is
// malformed). Validation catches required fields that end up empty.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("config").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		// If template parsing fails, return original data
		// This allows JSON without any template syntax to pass through
		return data
	}

	// Build environment map for template
	envMap := make(map[string]string)
	for _, env := range os.Environ() {
		// Split only on first = to handle values with = in them
		if idx := bytes.IndexByte([]byte(env), '='); idx > 0 {
			key := env[:idx]
			value := env[idx+1:]
			envMap[key] = value
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, envMap); err != nil {
		// If execution fails, return original data
		return data
	}

	return buf.Bytes()
}
