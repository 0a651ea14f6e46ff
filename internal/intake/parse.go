// Package intake turns user input into a validated roster, either from a JSON
// document or from an interactive prompt session.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
)

// Accepted keys, in lookup order. Matching ignores case.
var (
	nameKeys   = []string{"name", "driver", "competitor", "nome", "piloto", "n"}
	pointsKeys = []string{"points", "score", "pts", "pontuacao", "pontos", "p"}
)

// ParseJSON decodes a roster from a top-level JSON array of objects. A
// document that is itself a JSON string holding the array is unwrapped once.
func ParseJSON(data []byte) (model.Roster, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrValidation)
	}

	var raw any
	if err := decode(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if inner, ok := raw.(string); ok {
		if err := decode([]byte(inner), &raw); err != nil {
			return nil, fmt.Errorf("%w: inner document: %w", ErrValidation, err)
		}
	}

	items, ok := raw.([]any)
	if !ok {
		if _, isObject := raw.(map[string]any); isObject {
			return nil, fmt.Errorf("%w: expected an array of competitors, got a single object", ErrValidation)
		}
		return nil, fmt.Errorf("%w: expected an array of competitors", ErrValidation)
	}

	roster := make(model.Roster, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrValidation, i)
		}
		c, err := competitorFrom(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrValidation, i, err)
		}
		roster = append(roster, c)
	}

	if err := Validate(roster); err != nil {
		return nil, err
	}
	return roster, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after document")
	}
	return nil
}

func competitorFrom(obj map[string]any) (model.Competitor, error) {
	lower := make(map[string]any, len(obj))
	for k, v := range obj {
		lower[strings.ToLower(k)] = v
	}

	nameVal, ok := lookup(lower, nameKeys)
	if !ok {
		return model.Competitor{}, fmt.Errorf("missing name (one of %s)", strings.Join(nameKeys, ", "))
	}
	name, ok := nameVal.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return model.Competitor{}, fmt.Errorf("name must be a non-empty string")
	}

	pointsVal, ok := lookup(lower, pointsKeys)
	if !ok {
		return model.Competitor{}, fmt.Errorf("missing points (one of %s)", strings.Join(pointsKeys, ", "))
	}
	points, err := toPoints(pointsVal)
	if err != nil {
		return model.Competitor{}, err
	}

	return model.Competitor{Name: strings.TrimSpace(name), Points: points}, nil
}

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func toPoints(v any) (int, error) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, fmt.Errorf("points must be an integer")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("points must be an integer, got %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("points must not be negative, got %d", n)
	}
	return n, nil
}

// Validate checks that a roster is non-empty and holds unique, non-blank
// names with non-negative points. Names are compared case-insensitively.
func Validate(roster model.Roster) error {
	if len(roster) == 0 {
		return fmt.Errorf("%w: at least one competitor is required", ErrValidation)
	}

	seen := newNameSet()
	for i, c := range roster {
		switch {
		case strings.TrimSpace(c.Name) == "":
			return fmt.Errorf("%w: item %d: name must not be empty", ErrValidation, i)
		case c.Points < 0:
			return fmt.Errorf("%w: item %d: points must not be negative", ErrValidation, i)
		case seen.SeenAndRecord(context.Background(), c.Name):
			return fmt.Errorf("%w: item %d: duplicate name %q", ErrValidation, i, c.Name)
		}
	}
	return nil
}

// ParseRemainingEvents parses a non-negative event count.
func ParseRemainingEvents(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: remaining events must be an integer", ErrValidation)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: remaining events must not be negative", ErrValidation)
	}
	return n, nil
}

func newNameSet() dedupe.Deduper {
	return dedupe.NewInMemoryDeduper(dedupe.WithNormalizer(func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}))
}
