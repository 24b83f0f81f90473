package transport

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
)

var (
	idSeparatorPattern  = regexp.MustCompile(`[\s_/\\.,]+`)
	idDisallowedPattern = regexp.MustCompile(`[^a-zа-я0-9-]`)
	idDashRunPattern    = regexp.MustCompile(`-{2,}`)
)

// GenerateStableID derives a deterministic identifier from city names or
// other label parts, so re-runs of the workers dedupe via upsert. Each
// part is normalized, non-word characters become dashes, dash runs
// collapse, and the cleaned parts are joined with a single dash. When
// normalization empties every part, a hash of the raw input is used
// instead; the function fails only when the raw input itself is empty.
func GenerateStableID(parts ...string) (string, error) {
	var segments []string
	for _, part := range parts {
		cleaned := cleanIDPart(part)
		if cleaned != "" {
			segments = append(segments, cleaned)
		}
	}

	if len(segments) > 0 {
		id := strings.Join(segments, "-")
		id = idDashRunPattern.ReplaceAllString(id, "-")
		id = strings.Trim(id, "-")
		if id != "" {
			return id, nil
		}
	}

	raw := strings.TrimSpace(strings.Join(parts, ""))
	if raw == "" {
		return "", shared.NewValidationError("parts", "cannot derive a stable id from empty input")
	}
	h := fnv.New32a()
	h.Write([]byte(raw))
	return fmt.Sprintf("id-%08x", h.Sum32()), nil
}

func cleanIDPart(part string) string {
	s := reference.NormalizeCityName(part)
	s = idSeparatorPattern.ReplaceAllString(s, "-")
	s = idDisallowedPattern.ReplaceAllString(s, "")
	s = idDashRunPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// VirtualStopID builds the deterministic id for a city's virtual stop.
func VirtualStopID(cityName string) (string, error) {
	stable, err := GenerateStableID(cityName)
	if err != nil {
		return "", fmt.Errorf("failed to build virtual stop id for %q: %w", cityName, err)
	}
	return "virtual-stop-" + stable, nil
}

// VirtualRouteID builds the deterministic id for a synthesized connection.
func VirtualRouteID(fromStopID, toStopID string) (string, error) {
	stable, err := GenerateStableID("virtual-route", fromStopID, toStopID)
	if err != nil {
		return "", fmt.Errorf("failed to build virtual route id for %q->%q: %w", fromStopID, toStopID, err)
	}
	return stable, nil
}

// AirRouteID builds the deterministic id for a generated air route leg.
func AirRouteID(fromCity, toCity string, direction int) (string, error) {
	stable, err := GenerateStableID(fromCity, toCity)
	if err != nil {
		return "", fmt.Errorf("failed to build air route id for %q->%q: %w", fromCity, toCity, err)
	}
	return fmt.Sprintf("air-route-%s-%d", stable, direction), nil
}

// FlightID builds the deterministic id for one scheduled departure.
func FlightID(routeID string, isoWeekday int, departure string) string {
	return fmt.Sprintf("flight-%s-%d-%s", routeID, isoWeekday, strings.ReplaceAll(departure, ":", ""))
}
