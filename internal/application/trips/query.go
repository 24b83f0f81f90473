package trips

import (
	"strings"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/risk"
)

// PlanTripQuery asks for the best routes between two cities on a date
type PlanTripQuery struct {
	FromCity   string `json:"fromCity" validate:"required"`
	ToCity     string `json:"toCity" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Passengers int    `json:"passengers" validate:"required,min=1,max=100"`
}

// Machine-readable failure classes of a trip query
const (
	ErrGraphUnavailable = "GRAPH_UNAVAILABLE"
	ErrNoStopsFound     = "NO_STOPS_FOUND"
	ErrGraphOutOfSync   = "GRAPH_OUT_OF_SYNC"
	ErrNoRoute          = "NO_ROUTE"
	ErrValidation       = "VALIDATION_ERROR"
	ErrTimeout          = "TIMEOUT"
)

// TransportKind is the normalized transport enum returned to clients
type TransportKind string

const (
	KindAirplane TransportKind = "AIRPLANE"
	KindBus      TransportKind = "BUS"
	KindTrain    TransportKind = "TRAIN"
	KindFerry    TransportKind = "FERRY"
	KindTaxi     TransportKind = "TAXI"
	KindUnknown  TransportKind = "UNKNOWN"
)

var transportKinds = map[string]TransportKind{
	"самолет":  KindAirplane,
	"plane":    KindAirplane,
	"airplane": KindAirplane,
	"автобус":  KindBus,
	"bus":      KindBus,
	"поезд":    KindTrain,
	"train":    KindTrain,
	"паром":    KindFerry,
	"ferry":    KindFerry,
	"такси":    KindTaxi,
	"taxi":     KindTaxi,
}

// NormalizeTransportTag maps a raw transport tag, Russian or English, to
// the client-facing enum. Unrecognized tags become UNKNOWN.
func NormalizeTransportTag(tag string) TransportKind {
	folded := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "ё", "е")
	if kind, ok := transportKinds[folded]; ok {
		return kind
	}
	return KindUnknown
}

// TripSegment is one leg of a planned route
type TripSegment struct {
	FromStopID      string        `json:"fromStopId"`
	ToStopID        string        `json:"toStopId"`
	FromName        string        `json:"fromName"`
	ToName          string        `json:"toName"`
	TransportType   TransportKind `json:"transportType"`
	DurationMinutes float64       `json:"durationMinutes"`
	DistanceKm      float64       `json:"distanceKm"`
	PriceRub        float64       `json:"priceRub"`
	DepartureTime   string        `json:"departureTime,omitempty"`
	ArrivalTime     string        `json:"arrivalTime,omitempty"`
	RouteID         string        `json:"routeId,omitempty"`
}

// TripRoute is one complete planned route
type TripRoute struct {
	FromCity        string        `json:"fromCity"`
	ToCity          string        `json:"toCity"`
	DepartureDate   string        `json:"departureDate"`
	Segments        []TripSegment `json:"segments"`
	TotalDuration   float64       `json:"totalDurationMinutes"`
	TotalDistanceKm float64       `json:"totalDistanceKm"`
	TotalPriceRub   float64       `json:"totalPriceRub"`
	TransferCount   int           `json:"transferCount"`
	DepartureTime   string        `json:"departureTime,omitempty"`
	ArrivalTime     string        `json:"arrivalTime,omitempty"`
}

// PathKey is the dedup key over the route's stop sequence.
func (r *TripRoute) PathKey() string {
	if len(r.Segments) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Segments)+1)
	parts = append(parts, r.Segments[0].FromStopID)
	for _, s := range r.Segments {
		parts = append(parts, s.ToStopID)
	}
	return strings.Join(parts, "->")
}

// PlanTripResponse is the full answer to a trip query
type PlanTripResponse struct {
	Success         bool             `json:"success"`
	ErrorCode       string           `json:"errorCode,omitempty"`
	Error           string           `json:"error,omitempty"`
	MissingNodes    []string         `json:"missingNodes,omitempty"`
	Routes          []TripRoute      `json:"routes,omitempty"`
	Alternatives    []TripRoute      `json:"alternatives,omitempty"`
	RiskAssessment  *risk.Assessment `json:"riskAssessment,omitempty"`
	ExecutionTimeMs int64            `json:"executionTimeMs"`
	GraphAvailable  bool             `json:"graphAvailable"`
	GraphVersion    string           `json:"graphVersion,omitempty"`
}
