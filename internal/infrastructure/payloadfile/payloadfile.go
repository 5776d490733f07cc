// Package payloadfile reads request payloads authored on disk. YAML files
// are parsed as YAML; everything else as JSON with comments and trailing
// commas allowed.
package payloadfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Parse decodes data into a map. ext selects the format.
func Parse(data []byte, ext string) (map[string]any, error) {
	var out map[string]any

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing yaml payload: %w", err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil {
			return nil, fmt.Errorf("parsing json payload: %w", err)
		}
	}

	if out == nil {
		return nil, fmt.Errorf("payload is empty")
	}
	return out, nil
}

// ReadFile reads and parses the payload file at path.
func ReadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
