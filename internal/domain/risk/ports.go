package risk

import "context"

// RouteSegment is the per-leg view handed to the risk scorer
type RouteSegment struct {
	FromStopID      string  `json:"fromStopId"`
	ToStopID        string  `json:"toStopId"`
	TransportType   string  `json:"transportType"`
	DurationMinutes float64 `json:"durationMinutes"`
	DistanceKm      float64 `json:"distanceKm"`
	DepartureTime   string  `json:"departureTime,omitempty"`
	ArrivalTime     string  `json:"arrivalTime,omitempty"`
}

// BuiltRoute is the canonical shape the query engine builds for scoring
type BuiltRoute struct {
	Segments       []RouteSegment `json:"segments"`
	TransferCount  int            `json:"transferCount"`
	TransportTypes []string       `json:"transportTypes"`
	DepartureTime  string         `json:"departureTime,omitempty"`
	ArrivalTime    string         `json:"arrivalTime,omitempty"`
	TravelDate     string         `json:"travelDate"`
}

// Assessment is the scorer's verdict over one built route
type Assessment struct {
	Score   float64  `json:"score"`
	Level   string   `json:"level"`
	Factors []string `json:"factors,omitempty"`
}

// Assessor scores a built route. Failures are non-fatal to the query: the
// caller logs them and returns the route without the assessment.
type Assessor interface {
	AssessRoute(ctx context.Context, route *BuiltRoute) (*Assessment, error)
}
