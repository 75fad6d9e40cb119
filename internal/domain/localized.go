package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LocalizedString is a language-keyed mapping that remembers the order
// the keys appeared in, so "first available" is well defined.
type LocalizedString struct {
	Keys   []string
	Values map[string]string
}

func (l *LocalizedString) UnmarshalJSON(data []byte) error {
	l.Keys = nil
	l.Values = make(map[string]string)

	// mangadex sends [] instead of {} for an empty mapping
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("localized string: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("localized string: expected key, got %v", keyTok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("localized string: value for %q: %w", key, err)
		}

		if _, seen := l.Values[key]; !seen {
			l.Keys = append(l.Keys, key)
		}
		l.Values[key] = value
	}

	_, err = dec.Token()
	return err
}

// Resolve returns the value for preferred, falling back to the first key present.
func (l LocalizedString) Resolve(preferred string) (string, error) {
	return ResolveLocalized(l.Values, l.Keys, preferred)
}

// ResolveLocalized picks values[preferred] if present, otherwise the value of
// the first key in order. An empty mapping is an upstream data problem.
func ResolveLocalized(values map[string]string, order []string, preferred string) (string, error) {
	if v, ok := values[preferred]; ok {
		return v, nil
	}

	for _, key := range order {
		if v, ok := values[key]; ok {
			return v, nil
		}
	}

	return "", ErrEmptyLocalized
}
