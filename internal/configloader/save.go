package configloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gocharset/pkg/config"
	"github.com/yaklabco/gocharset/pkg/fsutil"
)

// configFilePermissions is the file mode for configuration files.
const configFilePermissions = 0o644

// SaveUserValue writes one setting into the user config file in dir,
// creating the file if needed, and returns the file path. key is a dotted
// path such as "last_charset" or "cache.path". Comments and other keys in
// an existing file are preserved.
func SaveUserValue(ctx context.Context, dir, key, value string) (string, error) {
	if dir == "" {
		dir = UserConfigDir()
	}
	if dir == "" {
		return "", errors.New("no user configuration directory")
	}

	path := findConfigInDir(dir)
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}

	var doc yaml.Node
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		content = nil
	case err != nil:
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	if len(strings.TrimSpace(string(content))) > 0 {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return "", fmt.Errorf("parse %s: %w", path, err)
		}
	}

	root := documentMapping(&doc)
	if root == nil {
		return "", fmt.Errorf("%s: top level is not a mapping", path)
	}
	setValue(root, strings.Split(key, "."), value)

	out, err := encodeDocument(&doc, content == nil)
	if err != nil {
		return "", err
	}

	// Reject anything the loader would refuse later.
	if err := config.DecodeInto(config.NewConfig(), out); err != nil {
		return "", fmt.Errorf("set %s: %w", key, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := fsutil.WriteAtomic(ctx, path, out, configFilePermissions); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

// documentMapping returns the top-level mapping of doc, creating an empty
// document when doc is blank. It returns nil for non-mapping documents.
func documentMapping(doc *yaml.Node) *yaml.Node {
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	return root
}

// setValue sets a scalar at path inside mapping, creating nested mappings.
func setValue(mapping *yaml.Node, path []string, value string) {
	key := path[0]

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		child := mapping.Content[i+1]
		if len(path) == 1 {
			*child = yaml.Node{Kind: yaml.ScalarNode, Value: value, LineComment: child.LineComment}
			return
		}
		if child.Kind != yaml.MappingNode {
			*child = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		setValue(child, path[1:], value)
		return
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	if len(path) == 1 {
		mapping.Content = append(mapping.Content, keyNode, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
		return
	}

	child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	mapping.Content = append(mapping.Content, keyNode, child)
	setValue(child, path[1:], value)
}

func encodeDocument(doc *yaml.Node, fresh bool) ([]byte, error) {
	var buf strings.Builder
	if fresh {
		buf.WriteString(config.DefaultTemplateHeader())
		buf.WriteString("\n\n")
	}

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(config.YAMLIndent())
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return []byte(buf.String()), nil
}
