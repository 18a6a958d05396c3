// Package extract turns a free-form Vietnamese message into a candidate
// expense using a generative model.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chitieu/internal/core"
)

var (
	// ErrExtractionFailed covers every way a model answer can be unusable:
	// transport errors, timeouts, malformed JSON, missing or mistyped fields.
	ErrExtractionFailed = errors.New("expense extraction failed")
	ErrEmptyInput       = errors.New("empty input")
)

// Extractor produces a candidate expense from user text. It never touches
// dialogue state.
type Extractor interface {
	Extract(ctx context.Context, text string) (core.Candidate, error)
}

// ParseResponse decodes a model answer into a candidate. All four fields must
// be present with the right JSON types and pass candidate validation.
func ParseResponse(raw string) (core.Candidate, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return core.Candidate{}, fmt.Errorf("%w: empty response", ErrExtractionFailed)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return core.Candidate{}, fmt.Errorf("%w: decode json: %v", ErrExtractionFailed, err)
	}

	var (
		c   core.Candidate
		err error
	)
	if c.Amount, err = numberField(fields, "amount"); err != nil {
		return core.Candidate{}, err
	}
	category, err := stringField(fields, "category")
	if err != nil {
		return core.Candidate{}, err
	}
	c.Category = core.Category(strings.TrimSpace(category))
	if c.Description, err = stringField(fields, "description"); err != nil {
		return core.Candidate{}, err
	}
	c.Description = strings.TrimSpace(c.Description)
	if c.Confidence, err = numberField(fields, "confidence"); err != nil {
		return core.Candidate{}, err
	}

	if err := c.Validate(); err != nil {
		return core.Candidate{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return c, nil
}

func numberField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrExtractionFailed, name)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrExtractionFailed, name, err)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: field %q is %T, want number", ErrExtractionFailed, name, v)
	}
	return n, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrExtractionFailed, name)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: field %q: %v", ErrExtractionFailed, name, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrExtractionFailed, name, v)
	}
	return s, nil
}

// cleanModelJSON strips markdown fences and any chatter around the object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}
