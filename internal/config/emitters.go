package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Emitter file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var ErrNotTable = errors.New("config: emitter entry is not a table")

// Emitters maps each configured name to its entry: the "emitter" kind key
// plus the kind's options.
type Emitters map[string]map[string]any

// FormatFromPath picks the format from the file extension. Anything other
// than YAML or JSON is read as TOML.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// LoadEmitters reads and parses the emitter file at path.
func LoadEmitters(path string) (Emitters, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	e, err := ParseEmitters(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return e, nil
}

// ParseEmitters decodes data in the given format. Keys keep their case.
func ParseEmitters(data []byte, format string) (Emitters, error) {
	var raw map[string]any
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatJSON:
		if len(strings.TrimSpace(string(data))) == 0 {
			break
		}
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("config: unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	out := make(Emitters, len(raw))
	for name, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %T", ErrNotTable, name, v)
		}
		out[name] = entry
	}
	return out, nil
}
