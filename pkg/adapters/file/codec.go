package file

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/formwork/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a definition.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Ext returns the file extension, dot included.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// FormatFromPath infers the format from a file name. Anything but .yaml/.yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode renders a definition. YAML output mirrors the JSON field names.
func Encode(def *domain.Definition, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal definition: %w", err)
	}
	if format != FormatYAML {
		return append(data, '\n'), nil
	}

	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal definition as yaml: %w", err)
	}
	return out, nil
}

// Decode parses a definition. YAML is routed through JSON so both formats share
// the component codec, including the legacy bare list.
func Decode(data []byte, format Format) (domain.Definition, error) {
	if format != FormatYAML {
		return domain.DecodeDefinition(data)
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return domain.DefaultDefinition(), fmt.Errorf("failed to parse yaml definition: %w", err)
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return domain.DefaultDefinition(), fmt.Errorf("yaml definition is not representable as json: %w", err)
	}
	return domain.DecodeDefinition(raw)
}
