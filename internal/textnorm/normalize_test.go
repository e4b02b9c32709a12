package textnorm_test

import (
	"testing"

	"liner/internal/textnorm"
)

func TestNormalizeFoldsCaseAndDiacritics(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"Björk", "bjork"},
		{"BJORK", "bjork"},
		{"  bjork  ", "bjork"},
		{"Sigur Rós", "sigur ros"},
		{"Motörhead", "motorhead"},
		{"David   Bowie", "david bowie"},
	}
	for _, tc := range cases {
		if got := textnorm.Normalize(tc.input); got != tc.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestEqual(t *testing.T) {
	if !textnorm.Equal("Björk", "bjork") {
		t.Error("expected Björk and bjork to match")
	}
	if textnorm.Equal("Björk", "Bjorn") {
		t.Error("expected Björk and Bjorn to differ")
	}
}

func TestSortKeyRotatesArticles(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"The Beatles", "Beatles, The"},
		{"A Tribe Called Quest", "Tribe Called Quest, A"},
		{"An Horse", "Horse, An"},
		{"David Bowie", "David Bowie"},
		{"The", "The"},
		{"Theatre of Tragedy", "Theatre of Tragedy"},
	}
	for _, tc := range cases {
		if got := textnorm.SortKey(tc.input); got != tc.expected {
			t.Errorf("SortKey(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
