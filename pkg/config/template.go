package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every option with its default; otherwise the options are
	// commented out.
	Full bool

	// Format is "yaml" or "json".
	Format string
}

// GenerateTemplate creates a starter configuration file.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		out, err := json.MarshalIndent(NewConfig(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(out, '\n'), nil
	}

	if opts.Full {
		return generateFullTemplate()
	}
	return []byte(minimalTemplate), nil
}

const minimalTemplate = `# gocharset configuration
# See: https://github.com/yaklabco/gocharset

# Number of parallel workers (0 = one per CPU)
# jobs: 0

# Bytes inspected per file
# max_bytes: 262144

# Base-name glob patterns
# include:
#   - "*.txt"
# exclude:
#   - "*.min.js"
#   - "node_modules"

# Skip vendored and generated files such as node_modules and *.min.js
# skip_vendored: false

# Charset reported for legacy text the detector is unsure about
# fallback: ISO-8859-1

# Default target for "gocharset convert"
# last_charset: UTF-8
`

func generateFullTemplate() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n#\n# Every option is listed with its default value.\n\n")

	body, err := NewConfig().ToYAML()
	if err != nil {
		return nil, err
	}
	buf.Write(body)

	buf.WriteString(`
# include:
#   - "*.txt"
#   - "*.csv"
# exclude:
#   - "vendor"
#   - "*.min.js"
`)
	return buf.Bytes(), nil
}

// DefaultTemplateHeader returns the header written at the top of generated
// and saved configuration files.
func DefaultTemplateHeader() string {
	return `# gocharset configuration
# See: https://github.com/yaklabco/gocharset`
}
