package taxonomy

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
)

type entry struct {
	Region string
	Text   string
}

func keyOf(e entry) string { return e.Region }

func withRegion(e entry, region string) entry {
	e.Region = region
	return e
}

func placeholder(region string) entry {
	return entry{Region: region, Text: "*No data.*"}
}

func regionsOf(entries []entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Region
	}
	return out
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"China", "China", true},
		{"  east asia ", "East Asia", true},
		{"Middle East", "West Asia (Middle East)", true},
		{"west asia", "West Asia (Middle East)", true},
		{"Latin America", "Latin America & Caribbean", true},
		{"UK", "Europe", true},
		{"USA", "North America", true},
		{"United States", "North America", true},
		{"**Russia**", "Russia", true},
		{"Unknown", "", false},
		{"Atlantis", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if Categorise("Atlantis") != Unknown {
		t.Fatal("expected Unknown for unmatched category")
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"West Asia (Middle East)":   "west-asia-middle-east",
		"Latin America & Caribbean": "latin-america-caribbean",
		"Global":                    "global",
		"In-Depth Analysis":         "in-depth-analysis",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitSectionsDiscardsPreamble(t *testing.T) {
	text := "Sure! Here is the report.\n\n## China\nTrade talks resumed.\n\n### Detail\nnested stays in body\n## Europe\n\n## Africa\nElections.\n"
	sections := SplitSections(text, 2)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections (empty body dropped), got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "China" || !strings.Contains(sections[0].Body, "nested stays in body") {
		t.Fatalf("unexpected first section %+v", sections[0])
	}
	if sections[1].Heading != "Africa" || sections[1].Body != "Elections." {
		t.Fatalf("unexpected second section %+v", sections[1])
	}
}

func TestSplitSectionsLensLevel(t *testing.T) {
	text := "### Realist ###\nPower balance.\n### Marxist\nClass analysis.\n"
	sections := SplitSections(text, 3)
	if len(sections) != 2 || sections[0].Heading != "Realist" || sections[1].Heading != "Marxist" {
		t.Fatalf("unexpected lens sections %+v", sections)
	}
}

func TestCompleteFillsMissingInCanonicalOrder(t *testing.T) {
	in := []entry{
		{Region: "Oceania", Text: "o"},
		{Region: "Middle East", Text: "me"},
		{Region: "Atlantis", Text: "drop me"},
		{Region: "China", Text: "first"},
		{Region: "china", Text: "duplicate"},
	}
	out := Complete("test", in, keyOf, withRegion, placeholder, logging.NewNop())

	if !slices.Equal(regionsOf(out), Regions()) {
		t.Fatalf("region order mismatch: %v", regionsOf(out))
	}
	if out[Index("China")].Text != "first" {
		t.Fatalf("expected first China entry kept verbatim, got %q", out[Index("China")].Text)
	}
	if out[Index("West Asia (Middle East)")].Text != "me" {
		t.Fatalf("alias entry not matched: %+v", out[Index("West Asia (Middle East)")])
	}
	if out[Index("Global")].Text != "*No data.*" {
		t.Fatalf("expected placeholder for Global, got %q", out[Index("Global")].Text)
	}
}

// Arbitrarily malformed input must still yield exactly the canonical set.
func TestCompleteAlwaysYieldsCanonicalSet(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := append(Regions(), "Unknown", "Atlantis", "uk", "USA", "", "Mars")
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(30)
		in := make([]entry, 0, n)
		for i := 0; i < n; i++ {
			in = append(in, entry{Region: pool[rng.Intn(len(pool))], Text: fmt.Sprint(i)})
		}
		out := Complete("fuzz", in, keyOf, withRegion, placeholder, nil)
		if len(out) != len(Regions()) {
			t.Fatalf("trial %d: got %d entries", trial, len(out))
		}
		if !slices.Equal(regionsOf(out), Regions()) {
			t.Fatalf("trial %d: keys %v", trial, regionsOf(out))
		}
	}
}

func TestIndexSortsUnknownLast(t *testing.T) {
	if Index(Unknown) != len(Regions()) {
		t.Fatalf("Unknown index = %d", Index(Unknown))
	}
	if Index("Global") != 0 || Index("Oceania") != len(Regions())-1 {
		t.Fatal("unexpected canonical indices")
	}
}

func TestFill(t *testing.T) {
	out := Fill(placeholder)
	if !slices.Equal(regionsOf(out), Regions()) {
		t.Fatalf("Fill produced %v", regionsOf(out))
	}
}
