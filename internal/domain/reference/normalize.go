package reference

import (
	"regexp"
	"strings"
)

var (
	// Settlement-type markers stripped from the front of a city name.
	// Requires a dot or whitespace after the marker so names like
	// "Покровск" or "Горный" keep their first letters.
	cityPrefixPattern = regexp.MustCompile(`^(г|гор|город|пгт|п|с)[.\s]+`)

	// Everything except Latin/Cyrillic lowercase letters, digits,
	// whitespace and hyphens is dropped after lowering.
	disallowedPattern = regexp.MustCompile(`[^a-zа-я0-9\s-]`)

	whitespacePattern = regexp.MustCompile(`\s+`)

	displayPrefixPattern = regexp.MustCompile(`(?i)^(г\.|город)\s*`)
)

// NormalizeCityName produces the canonical form used for every cityId
// comparison and for stable ID generation: lowercase, trimmed, settlement
// markers stripped, ё folded to е, whitespace collapsed, punctuation
// removed. The function is idempotent.
func NormalizeCityName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "ё", "е")

	// Strip stacked markers ("г. п. Нижний Бестях") until stable
	for {
		stripped := cityPrefixPattern.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}

	s = disallowedPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// DisplayCityName extracts a human-readable city name from a stop name,
// keeping the original case. "г. Якутск" becomes "Якутск".
func DisplayCityName(stopName string) string {
	trimmed := strings.TrimSpace(stopName)
	stripped := strings.TrimSpace(displayPrefixPattern.ReplaceAllString(trimmed, ""))
	if stripped == "" {
		return trimmed
	}
	return stripped
}
