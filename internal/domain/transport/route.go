package transport

import (
	"time"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
)

// TransportType enumerates real route transport kinds
type TransportType string

const (
	TransportBus   TransportType = "BUS"
	TransportTrain TransportType = "TRAIN"
	TransportPlane TransportType = "PLANE"
	TransportWater TransportType = "WATER"
	TransportFerry TransportType = "FERRY"
)

// RouteStop is one entry of a route's ordered stop sequence
type RouteStop struct {
	StopID   string `json:"stopId"`
	Sequence int    `json:"sequence"`
}

// Route is a real route created by ingestion. Stops sequence has length
// >= 2 and is sequentially numbered.
type Route struct {
	ID              string
	TransportType   TransportType
	FromStopID      string
	ToStopID        string
	Stops           []RouteStop
	DurationMinutes int     // 0 when unknown
	DistanceKm      float64 // 0 when unknown
	Operator        string
	RouteNumber     string
	Metadata        map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RouteType describes which endpoint kinds a virtual route connects
type RouteType string

const (
	RouteRealToVirtual    RouteType = "REAL_TO_VIRTUAL"
	RouteVirtualToReal    RouteType = "VIRTUAL_TO_REAL"
	RouteVirtualToVirtual RouteType = "VIRTUAL_TO_VIRTUAL"
)

// TransportMode is how a virtual route is traversed
type TransportMode string

const (
	ModeWalk     TransportMode = "WALK"
	ModeTransfer TransportMode = "TRANSFER"
	ModeShuttle  TransportMode = "SHUTTLE"
)

// MetadataKeyTransportType is the virtual-route metadata key carrying the
// real transport tag (PLANE, BUS, ...) used for graph edges.
const MetadataKeyTransportType = "transportType"

// VirtualRoute is synthesized connectivity between two stops.
type VirtualRoute struct {
	ID              string
	RouteType       RouteType
	FromStopID      string
	ToStopID        string
	DistanceKm      float64
	DurationMinutes int
	TransportMode   TransportMode
	Metadata        map[string]string
	CreatedAt       time.Time
}

// NewVirtualRoute validates endpoint and measure constraints.
func NewVirtualRoute(id string, routeType RouteType, fromStopID, toStopID string, distanceKm float64, durationMinutes int, mode TransportMode, metadata map[string]string) (*VirtualRoute, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "virtual route id cannot be empty")
	}
	if fromStopID == "" || toStopID == "" {
		return nil, shared.NewValidationError("stops", "virtual route endpoints cannot be empty")
	}
	if fromStopID == toStopID {
		return nil, shared.NewValidationError("stops", "virtual route endpoints must differ")
	}
	if distanceKm < 0 {
		return nil, shared.NewValidationError("distanceKm", "distance cannot be negative")
	}
	if durationMinutes < 0 {
		return nil, shared.NewValidationError("durationMinutes", "duration cannot be negative")
	}
	return &VirtualRoute{
		ID:              id,
		RouteType:       routeType,
		FromStopID:      fromStopID,
		ToStopID:        toStopID,
		DistanceKm:      distanceKm,
		DurationMinutes: durationMinutes,
		TransportMode:   mode,
		Metadata:        metadata,
	}, nil
}

// EdgeSource is the common edge-production contract over real and virtual
// routes. The graph builder consumes both through this interface.
type EdgeSource interface {
	SourceID() string
	FromStop() string
	ToStop() string
	// TransportTag is the transport type string used on graph edges
	TransportTag() string
	// Duration returns the route duration in minutes, false when unknown
	Duration() (int, bool)
	// Distance returns the route distance in km, false when unknown
	Distance() (float64, bool)
	// StopSequence returns the ordered stop list, nil for virtual routes
	StopSequence() []RouteStop
}

func (r *Route) SourceID() string { return r.ID }
func (r *Route) FromStop() string { return r.FromStopID }
func (r *Route) ToStop() string   { return r.ToStopID }

func (r *Route) TransportTag() string { return string(r.TransportType) }

func (r *Route) Duration() (int, bool) {
	if r.DurationMinutes <= 0 {
		return 0, false
	}
	return r.DurationMinutes, true
}

func (r *Route) Distance() (float64, bool) {
	if r.DistanceKm <= 0 {
		return 0, false
	}
	return r.DistanceKm, true
}

func (r *Route) StopSequence() []RouteStop { return r.Stops }

func (v *VirtualRoute) SourceID() string { return v.ID }
func (v *VirtualRoute) FromStop() string { return v.FromStopID }
func (v *VirtualRoute) ToStop() string   { return v.ToStopID }

// TransportTag prefers the real transport tag recorded at synthesis time,
// falling back to the traversal mode.
func (v *VirtualRoute) TransportTag() string {
	if tag, ok := v.Metadata[MetadataKeyTransportType]; ok && tag != "" {
		return tag
	}
	return string(v.TransportMode)
}

func (v *VirtualRoute) Duration() (int, bool) {
	if v.DurationMinutes <= 0 {
		return 0, false
	}
	return v.DurationMinutes, true
}

func (v *VirtualRoute) Distance() (float64, bool) {
	if v.DistanceKm <= 0 {
		return 0, false
	}
	return v.DistanceKm, true
}

func (v *VirtualRoute) StopSequence() []RouteStop { return nil }
