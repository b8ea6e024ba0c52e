package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Read decodes a JSON diagram from r. Read does not close r.
func Read(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode diagram: %w", err)
	}
	return &d, nil
}

// ReadYAML decodes a YAML diagram from r. The document must have the same
// structure as the JSON format; it is converted to JSON before decoding so
// both inputs share one code path.
func ReadYAML(r io.Reader) (*Diagram, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &Diagram{}, nil
		}
		return nil, fmt.Errorf("decode yaml diagram: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml diagram: %w", err)
	}
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode diagram: %w", err)
	}
	return &d, nil
}

// ReadFile reads a diagram from path, choosing the decoder by extension
// (.yaml and .yml use YAML, everything else JSON).
func ReadFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if IsYAML(path) {
		return ReadYAML(f)
	}
	return Read(f)
}

// IsYAML reports whether path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Marshal serializes d to pretty-printed JSON.
func Marshal(d *Diagram) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Write writes d to w as pretty-printed JSON followed by a newline.
func Write(w io.Writer, d *Diagram) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteFile writes d to path as pretty-printed JSON.
func WriteFile(path string, d *Diagram) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
