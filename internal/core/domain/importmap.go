package domain

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// ImportMap maps module specifiers to resolution entries.
// It is collected once per document and shared read-only by every load.
type ImportMap struct {
	Imports Specifiers            `json:"imports,omitempty"`
	Scopes  map[string]Specifiers `json:"scopes,omitempty"`
}

// Specifiers maps module specifiers to entries kept as raw JSON, so entries of
// any type reach the transform service unchanged.
type Specifiers map[string]json.RawMessage

// SpecifiersOf builds Specifiers from string entries.
func SpecifiersOf(entries map[string]string) Specifiers {
	s := make(Specifiers, len(entries))
	for spec, target := range entries {
		// json.Marshal of a string cannot fail.
		s[spec], _ = json.Marshal(target)
	}
	return s
}

// Target returns the entry of spec when it is a string.
func (s Specifiers) Target(spec string) (string, bool) {
	raw, ok := s[spec]
	if !ok {
		return "", false
	}
	var target string
	if err := json.Unmarshal(raw, &target); err != nil {
		return "", false
	}
	return target, true
}

// IsEmpty reports whether the import map declares nothing.
func (m *ImportMap) IsEmpty() bool {
	return m == nil || (len(m.Imports) == 0 && len(m.Scopes) == 0)
}

// CanonicalJSON returns the deterministic serialization used by the fingerprint
// and the transform request. Keys are sorted; an empty map serializes as {}.
func (m *ImportMap) CanonicalJSON() []byte {
	if m.IsEmpty() {
		return []byte("{}")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// ParseImportMap parses an import map declaration.
// Comments and trailing commas are tolerated; unknown top-level keys are ignored.
func ParseImportMap(data []byte) (*ImportMap, error) {
	var m ImportMap
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportMapParse, err)
	}
	return &m, nil
}
