package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Optional holds a value that is only applied when Set.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

// Apply overwrites dst when the option is set.
func (o Optional[T]) Apply(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}

// Patch is a raw JSON object body; a key is present only if the client sent it.
type Patch map[string]json.RawMessage

// ParsePatch decodes a JSON object body. An empty body is an empty patch.
func ParsePatch(body []byte) (Patch, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Patch{}, nil
	}
	var p Patch
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if p == nil {
		return Patch{}, nil
	}
	return p, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Field decodes key as T. null and wrongly typed values are recorded in errs.
func Field[T any](p Patch, key, kind string, errs FieldErrors) Optional[T] {
	raw, ok := p[key]
	if !ok {
		return Optional[T]{}
	}
	var v T
	if isNull(raw) || json.Unmarshal(raw, &v) != nil {
		errs.Add(key, fmt.Sprintf("The %s must be %s.", key, kind))
		return Optional[T]{}
	}
	return Some(v)
}

// NullableField is Field for columns that accept null; a sent null is Some(nil).
func NullableField[T any](p Patch, key, kind string, errs FieldErrors) Optional[*T] {
	raw, ok := p[key]
	if !ok {
		return Optional[*T]{}
	}
	if isNull(raw) {
		return Some[*T](nil)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		errs.Add(key, fmt.Sprintf("The %s must be %s.", key, kind))
		return Optional[*T]{}
	}
	return Some(&v)
}

// StringField is Field[string] that also rejects blank strings.
func StringField(p Patch, key string, errs FieldErrors) Optional[string] {
	o := Field[string](p, key, "a string", errs)
	if o.Set && strings.TrimSpace(o.Value) == "" {
		errs.Add(key, fmt.Sprintf("The %s field is required.", key))
		return Optional[string]{}
	}
	return o
}

// requireFields records a missing-field error for every unset option named in fields.
func requireFields(errs FieldErrors, p Patch, fields ...string) {
	for _, f := range fields {
		if _, ok := p[f]; !ok {
			errs.Add(f, fmt.Sprintf("The %s field is required.", f))
		}
	}
}
