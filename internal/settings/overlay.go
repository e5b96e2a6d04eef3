package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseOverlay decodes a YAML settings overlay. The document is a mapping
// from scope to key/value pairs:
//
//	driver:
//	  global_endpoint_base: 2
//	serial.irq:
//	  generate_interrupts: true
//
// Unknown scopes are allowed; the overlay is merged over the declared
// settings by the caller, so it can both override and extend them.
func ParseOverlay(data []byte) (*Store, error) {
	var raw map[string]map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("decode settings overlay: %w", err)
	}
	store := New()
	for scope, kv := range raw {
		for key, value := range kv {
			store.Set(scope, key, value)
		}
	}
	return store, nil
}

// LoadOverlay reads and decodes a YAML overlay file.
func LoadOverlay(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings overlay: %w", err)
	}
	store, err := ParseOverlay(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}
