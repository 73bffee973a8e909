// Package docstore is the record store: loosely-typed documents grouped in
// collections, written whole or through per-field update commands.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// IDKey carries the document id on read. It is never persisted in the body.
const IDKey = "id"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned by Create when the id is taken.
	ErrExists = errors.New("document already exists")
	// ErrBadPath is returned for an empty, reserved or non-traversable field path.
	ErrBadPath = errors.New("invalid field path")
)

// Document is a JSON-compatible document body.
type Document map[string]any

// ID returns the document id, if any.
func (d Document) ID() string {
	id, _ := d[IDKey].(string)
	return id
}

// Field is a single per-field update command. Path is dotted, e.g.
// "fees.April.paid"; only the addressed leaf is overwritten.
type Field struct {
	Path  string
	Value any
}

// Set builds a Field.
func Set(path string, value any) Field {
	return Field{Path: path, Value: value}
}

// Store is implemented by every record store backend.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	// List returns every document of collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)
	// Create inserts doc, generating an id when doc has none, and returns the id.
	Create(ctx context.Context, collection string, doc Document) (string, error)
	// Set replaces or creates the whole document.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update applies field commands to an existing document.
	Update(ctx context.Context, collection, id string, fields ...Field) error
	Delete(ctx context.Context, collection, id string) error
}

// Encode converts a typed value into a document body.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// Decode fills v from a document.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// Apply runs field commands against doc in order, creating missing
// intermediate objects.
func Apply(doc Document, fields ...Field) error {
	for _, f := range fields {
		parts, err := splitPath(f.Path)
		if err != nil {
			return err
		}
		value, err := jsonValue(f.Value)
		if err != nil {
			return err
		}
		cur := map[string]any(doc)
		for i, p := range parts[:len(parts)-1] {
			next, ok := cur[p]
			if !ok || next == nil {
				m := map[string]any{}
				cur[p] = m
				cur = m
				continue
			}
			m, ok := next.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s is not an object", ErrBadPath, strings.Join(parts[:i+1], "."))
			}
			cur = m
		}
		cur[parts[len(parts)-1]] = value
	}
	return nil
}

func splitPath(path string) ([]string, error) {
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadPath, path)
		}
	}
	if parts[0] == IDKey {
		return nil, fmt.Errorf("%w: %q is reserved", ErrBadPath, path)
	}
	return parts, nil
}

// ValidatePaths checks every field path without applying anything.
func ValidatePaths(fields ...Field) error {
	for _, f := range fields {
		if _, err := splitPath(f.Path); err != nil {
			return err
		}
	}
	return nil
}

// jsonValue normalises v to the types encoding/json produces (maps, slices,
// float64, string, bool, nil) so every backend stores the same shapes.
func jsonValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return out, nil
}

// body returns a normalised copy of doc without the id key.
func body(doc Document) (Document, error) {
	v, err := jsonValue(map[string]any(doc))
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	delete(m, IDKey)
	return Document(m), nil
}

func withID(doc Document, id string) Document {
	if doc == nil {
		doc = Document{}
	}
	doc[IDKey] = id
	return doc
}

func clone(v any) any {
	switch t := v.(type) {
	case Document:
		return Document(cloneMap(t))
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	}
	return v
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}
