// Package taxonomy owns the fixed ordered region list every synthesis stage
// reports against, and the validator that forces generated output onto it.
package taxonomy

import (
	"regexp"
	"strings"
)

// Unknown is the categorisation result for articles that match no region. It
// is never a synthesis category.
const Unknown = "Unknown"

var canonical = []string{
	"Global",
	"China",
	"East Asia",
	"Singapore",
	"Southeast Asia",
	"South Asia",
	"Central Asia",
	"Russia",
	"West Asia (Middle East)",
	"Africa",
	"Europe",
	"Latin America & Caribbean",
	"North America",
	"Oceania",
}

var aliases = map[string]string{
	"west asia":     "West Asia (Middle East)",
	"middle east":   "West Asia (Middle East)",
	"latin america": "Latin America & Caribbean",
	"uk":            "Europe",
	"usa":           "North America",
	"united states": "North America",
}

var (
	canonicalIndex = func() map[string]int {
		idx := make(map[string]int, len(canonical))
		for i, r := range canonical {
			idx[r] = i
		}
		return idx
	}()
	slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace = regexp.MustCompile(`[\s-]+`)
)

// Regions returns the canonical region list in report order.
func Regions() []string {
	out := make([]string, len(canonical))
	copy(out, canonical)
	return out
}

// Index returns the canonical position of region, or len(Regions()) for
// Unknown and anything unrecognised so they sort last.
func Index(region string) int {
	if i, ok := canonicalIndex[region]; ok {
		return i
	}
	return len(canonical)
}

// Normalize maps free text onto a canonical region name. It tries an exact
// match, then the alias table, then a case-insensitive match.
func Normalize(name string) (string, bool) {
	cleaned := strings.TrimSpace(name)
	cleaned = strings.Trim(cleaned, "*#`'\". ")
	if cleaned == "" {
		return "", false
	}
	if _, ok := canonicalIndex[cleaned]; ok {
		return cleaned, true
	}
	lower := strings.ToLower(cleaned)
	if region, ok := aliases[lower]; ok {
		return region, true
	}
	for _, region := range canonical {
		if strings.ToLower(region) == lower {
			return region, true
		}
	}
	return "", false
}

// Categorise is Normalize with Unknown as the miss value.
func Categorise(name string) string {
	if region, ok := Normalize(name); ok {
		return region
	}
	return Unknown
}

// Slug produces an anchor-safe identifier: lowercase, punctuation dropped,
// whitespace runs joined with a dash.
func Slug(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = slugStrip.ReplaceAllString(lower, "")
	lower = slugSpace.ReplaceAllString(strings.TrimSpace(lower), "-")
	return strings.Trim(lower, "-")
}
