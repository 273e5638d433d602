// Package directory maps human assignee names to opaque user identifiers.
//
// The directory is a read-only lookup table injected at construction so it
// can be swapped per deployment without code changes. Lookup normalizes the
// name, tries the full name first, then falls back to a first-token prefix
// match against the directory keys.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Directory is a fixed mapping from normalized human name (full names and
// common first-name aliases, lower-cased and trimmed) to an opaque user ID.
type Directory struct {
	byName map[string]string
	// keys holds the map keys in sorted order so prefix matching is
	// deterministic when several keys share a prefix.
	keys []string
}

// New builds a Directory from a name-to-ID mapping. Keys are normalized on
// the way in; the input map is copied.
func New(mapping map[string]string) *Directory {
	byName := make(map[string]string, len(mapping))
	for name, id := range mapping {
		byName[Normalize(name)] = id
	}

	keys := make([]string, 0, len(byName))
	for name := range byName {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	return &Directory{byName: byName, keys: keys}
}

// LoadFile builds a Directory from a JSON file containing a flat
// name-to-ID object.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assignee directory: %w", err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parsing assignee directory %s: %w", path, err)
	}
	return New(mapping), nil
}

// Normalize canonicalizes a human name for lookup.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup resolves a human name to a user ID. It tries the exact normalized
// name first, then a prefix match on the name's first token. An unrecognized
// name returns ok = false; Lookup never fails.
func (d *Directory) Lookup(name string) (id string, ok bool) {
	if d == nil {
		return "", false
	}

	normalized := Normalize(name)
	if normalized == "" {
		return "", false
	}

	if id, ok := d.byName[normalized]; ok {
		return id, true
	}

	firstToken, _, _ := strings.Cut(normalized, " ")
	for _, key := range d.keys {
		if strings.HasPrefix(key, firstToken) {
			return d.byName[key], true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byName)
}

// Names returns the normalized names in the directory, sorted.
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.keys))
	copy(names, d.keys)
	return names
}
