package store

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	type sample struct {
		Name  string   `json:"name"`
		Tags  []string `json:"tags"`
		Score float64  `json:"score"`
	}

	in := sample{Name: "a", Tags: []string{"x", "y"}, Score: 4.5}
	doc, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if doc["name"] != "a" {
		t.Errorf("Encode() name = %v, want a", doc["name"])
	}

	var out sample
	if err := DecodeInto(doc, &out); err != nil {
		t.Fatalf("DecodeInto() error: %v", err)
	}
	if out.Name != in.Name || out.Score != in.Score || len(out.Tags) != 2 {
		t.Errorf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestMergeShallow(t *testing.T) {
	doc := Document{"name": "old", "notes": "keep", "nested": Document{"a": 1}}
	got := Merge(doc, Document{"name": "new", "nested": Document{"b": 2}})

	if got["name"] != "new" {
		t.Errorf("Merge() did not replace named field: %v", got["name"])
	}
	if got["notes"] != "keep" {
		t.Errorf("Merge() touched a sibling field: %v", got["notes"])
	}
	// Nested values are replaced wholesale, not merged.
	nested := got["nested"].(Document)
	if _, ok := nested["a"]; ok {
		t.Error("Merge() recursively merged a nested value")
	}
}

func TestMergeNilDestination(t *testing.T) {
	got := Merge(nil, Document{"k": "v"})
	if got["k"] != "v" {
		t.Errorf("Merge(nil, ...) = %v", got)
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		want    int
		wantErr bool
	}{
		{"present", Document{"boards": []any{"b1", "b2"}}, 2, false},
		{"absent", Document{}, 0, false},
		{"null", Document{"boards": nil}, 0, false},
		{"not a list", Document{"boards": "b1"}, 0, true},
		{"non-string member", Document{"boards": []any{"b1", 2.0}}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringList(tt.doc, "boards")
			if tt.wantErr {
				if !errors.Is(err, ErrSerializationFailed) {
					t.Errorf("StringList() error = %v, want ErrSerializationFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("StringList() error: %v", err)
			}
			if got == nil {
				t.Fatal("StringList() returned nil, want empty slice")
			}
			if len(got) != tt.want {
				t.Errorf("StringList() len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	valid := []string{"users/u1", "boards/b1/categories/c1", "boards"}
	for _, p := range valid {
		if err := ValidatePath(p); err != nil {
			t.Errorf("ValidatePath(%q) unexpected error: %v", p, err)
		}
	}

	invalid := []string{"", "/users", "users/", "users//u1", "users/../x", "a b/c"}
	for _, p := range invalid {
		if err := ValidatePath(p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ValidatePath(%q) error = %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestSchemaPaths(t *testing.T) {
	if got := UserPath("u1"); got != "users/u1" {
		t.Errorf("UserPath() = %q", got)
	}
	if got := BoardPath("b1"); got != "boards/b1" {
		t.Errorf("BoardPath() = %q", got)
	}
	if got := CategoryPath("b1", "c1"); got != "boards/b1/categories/c1" {
		t.Errorf("CategoryPath() = %q", got)
	}
	if got := RestaurantPath("b1", "r1"); got != "boards/b1/restaurants/r1" {
		t.Errorf("RestaurantPath() = %q", got)
	}
}
