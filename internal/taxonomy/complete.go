package taxonomy

import (
	"log/slog"
	"strings"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
)

// Complete forces entries onto the canonical region list. For each region the
// first entry whose key normalizes to it is kept, re-keyed through
// withRegion to the canonical name; regions with no entry receive
// placeholder(region). Entries that match no region, and duplicates, are
// dropped. The result always holds exactly one entry per canonical region,
// keyed by the canonical name, in canonical order.
func Complete[T any](stage string, entries []T, keyOf func(T) string, withRegion func(T, string) T, placeholder func(region string) T, logger *slog.Logger) []T {
	logger = logging.NewComponentLogger(logger, "taxonomy")

	found := make(map[string]T, len(canonical))
	var dropped []string
	for _, entry := range entries {
		key := keyOf(entry)
		region, ok := Normalize(key)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		if _, dup := found[region]; dup {
			dropped = append(dropped, key)
			continue
		}
		found[region] = withRegion(entry, region)
	}

	out := make([]T, 0, len(canonical))
	var missing []string
	for _, region := range canonical {
		if entry, ok := found[region]; ok {
			out = append(out, entry)
			continue
		}
		missing = append(missing, region)
		out = append(out, placeholder(region))
	}

	if len(dropped) > 0 {
		logger.Debug("dropped non-canonical sections",
			logging.String("stage", stage),
			logging.String("sections", strings.Join(dropped, "; ")),
		)
	}
	if len(missing) > 0 {
		logging.WarnWithContext(logger, "regions missing from generated output",
			"region_placeholder",
			logging.String("stage", stage),
			logging.Int("missing_count", len(missing)),
			logging.String("missing", strings.Join(missing, ", ")),
			logging.String(logging.FieldErrorHint, "inspect the generated text for renamed or merged region headings"),
			logging.String(logging.FieldImpact, "placeholder text inserted for missing regions"),
		)
	}
	return out
}

// Fill returns one placeholder per canonical region.
func Fill[T any](placeholder func(region string) T) []T {
	out := make([]T, 0, len(canonical))
	for _, region := range canonical {
		out = append(out, placeholder(region))
	}
	return out
}
