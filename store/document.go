// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package store

import (
	"encoding/json"
	"fmt"
)

// Document is the unit of storage: a field-addressable map, JSON on the
// wire. Merge updates need field-level access to values, which is why
// documents are maps rather than a positional binary encoding.
type Document = map[string]any

// Encode converts a typed value into a Document via its JSON form.
func Encode(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return doc, nil
}

// DecodeInto populates a typed value from a Document via its JSON form.
func DecodeInto(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return nil
}

// Merge shallow-merges fields into doc and returns doc. Only the named
// top-level fields are replaced; nested values are not merged recursively,
// matching the store's update semantics.
func Merge(doc, fields Document) Document {
	if doc == nil {
		doc = Document{}
	}
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return doc, nil
}

// StringList extracts a []string field from a Document. Absent or null
// fields yield an empty slice, never nil error; JSON numbers and other
// non-string members are rejected.
func StringList(doc Document, field string) ([]string, error) {
	raw, ok := doc[field]
	if !ok || raw == nil {
		return []string{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not a list", ErrSerializationFailed, field)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q has a non-string member", ErrSerializationFailed, field)
		}
		out = append(out, s)
	}
	return out, nil
}
