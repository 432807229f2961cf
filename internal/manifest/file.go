// Package manifest reads the input files of the timelock CLI: interface
// registries, operation records, role events and raw logs. Every file may be
// written as JSON or as YAML.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readJSON reads path and returns its content as JSON. YAML files are
// converted so that the JSON decoding hooks of the target types apply to
// both formats. Hex values in YAML files must be quoted.
func readJSON(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		return json.Marshal(doc)
	default:
		return raw, nil
	}
}

// decodeFile decodes the JSON or YAML file at path into out.
func decodeFile(path string, out any) error {
	data, err := readJSON(path)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

// decodeList decodes a file holding either a list of T or a single T.
func decodeList[T any](path string) ([]T, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		return []T{one}, nil
	}

	var many []T
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return many, nil
}
