package model

import "testing"

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"name":         "Name",
		"isActive":     "Is active",
		"created_at":   "Created at",
		"userID":       "User ID",
		"profile-url":  "Profile URL",
		"APIKey":       "API key",
		"seat2Number":  "Seat 2 number",
		"address.city": "Address city",
		"":             "",
	}
	for in, want := range cases {
		if got := DefaultLabeler(in); got != want {
			t.Fatalf("label %q: want %q, got %q", in, want, got)
		}
	}
}

func TestNormalizeRelationKind(t *testing.T) {
	kind, ok := NormalizeRelationKind("has_many")
	if !ok || kind != RelationHasMany || !kind.IsMultiple() {
		t.Fatalf("kind mismatch: got %q (ok=%v)", kind, ok)
	}
	kind, ok = NormalizeRelationKind("BelongsTo")
	if !ok || kind != RelationBelongsTo || kind.IsMultiple() {
		t.Fatalf("kind mismatch: got %q (ok=%v)", kind, ok)
	}
	if _, ok := NormalizeRelationKind("sibling"); ok {
		t.Fatalf("unknown kind should not normalize")
	}
}
