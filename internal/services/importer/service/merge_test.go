package service

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
)

func TestMergeIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base []crm.Entry
		add  []crm.ID
		want []crm.Entry
	}{
		{"existing id is not repeated", entries("A", "B"), ids("B"), entries("A", "B")},
		{"new id goes last", entries("B", "A"), ids("C"), entries("B", "A", "C")},
		{"empty base", nil, ids("C"), entries("C")},
		{"duplicates in base collapse", entries("A", "A", "B"), ids("C"), entries("A", "B", "C")},
		{"nothing to add", entries("A"), nil, entries("A")},
	}
	for _, tc := range tests {
		if got := MergeIDs(tc.base, tc.add...); !slices.Equal(got, tc.want) {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestMergeIDs_Idempotent(t *testing.T) {
	t.Parallel()

	once := MergeIDs(entries("A", "B"), "C")
	twice := MergeIDs(once, "C")
	if !slices.Equal(once, twice) {
		t.Fatalf("once=%v twice=%v", once, twice)
	}
}

func TestMergeIDs_KeepsNumericTokens(t *testing.T) {
	t.Parallel()

	var base []crm.Entry
	if err := json.Unmarshal([]byte(`[5,"A",7]`), &base); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(MergeIDs(base, "5", "A", "9"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `[5,"A",7,"9"]` {
		t.Fatalf("merged=%s", b)
	}
}
