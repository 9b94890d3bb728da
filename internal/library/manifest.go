package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mapcull/internal/dedup"
)

// manifest is the object form of a record batch. A bare top-level list of
// records is accepted as well.
type manifest struct {
	Records []dedup.Record `json:"records" yaml:"records"`
}

// LoadManifest reads a batch of records from a JSON or YAML file. The format
// follows the extension (.yaml/.yml, anything else is JSON).
func LoadManifest(path string) ([]dedup.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLManifest(data)
	default:
		return decodeJSONManifest(data)
	}
}

func decodeJSONManifest(data []byte) ([]dedup.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []dedup.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		return records, nil
	}
	var m manifest
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return m.Records, nil
}

func decodeYAMLManifest(data []byte) ([]dedup.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	doc := node.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var records []dedup.Record
		if err := doc.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		return records, nil
	}
	var m manifest
	if err := doc.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return m.Records, nil
}
