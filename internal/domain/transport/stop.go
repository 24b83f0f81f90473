package transport

import (
	"strings"
	"time"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
)

// Stop is a real stop created by ingestion. Read-only to the workers.
type Stop struct {
	ID               string
	Name             string
	Latitude         float64
	Longitude        float64
	CityID           string
	IsAirport        bool
	IsRailwayStation bool
	Metadata         map[string]string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GridType describes how a virtual stop was placed
type GridType string

const (
	GridMain    GridType = "MAIN_GRID"
	GridDense   GridType = "DENSE_CITY"
	GridAirport GridType = "AIRPORT_GRID"
)

// GridPosition is an optional row/column within a placement grid
type GridPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NearbyStop references a real stop near a virtual one
type NearbyStop struct {
	StopID     string  `json:"stopId"`
	DistanceKm float64 `json:"distanceKm"`
}

// VirtualStop is synthesized by the virtual-entities worker for cities
// without real stops. Never mutated after creation; only regenerated
// wholesale.
type VirtualStop struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	GridType     GridType
	CityID       string
	GridPosition *GridPosition
	NearbyStops  []NearbyStop
	CreatedAt    time.Time
}

// StopRecord is the unified view over real and virtual stops consumed by
// the stop filter and the graph builder.
type StopRecord struct {
	ID               string
	Name             string
	CityID           string
	Latitude         float64
	Longitude        float64
	IsAirport        bool
	IsRailwayStation bool
	Metadata         map[string]string
	IsVirtual        bool
}

// Record flattens a real stop into the unified view.
func (s *Stop) Record() StopRecord {
	return StopRecord{
		ID:               s.ID,
		Name:             s.Name,
		CityID:           s.CityID,
		Latitude:         s.Latitude,
		Longitude:        s.Longitude,
		IsAirport:        s.IsAirport,
		IsRailwayStation: s.IsRailwayStation,
		Metadata:         s.Metadata,
	}
}

// Record flattens a virtual stop into the unified view.
func (v *VirtualStop) Record() StopRecord {
	return StopRecord{
		ID:        v.ID,
		Name:      v.Name,
		CityID:    v.CityID,
		Latitude:  v.Latitude,
		Longitude: v.Longitude,
		IsAirport: v.GridType == GridAirport,
		IsVirtual: true,
	}
}

// StopType classifies a stop for transfer-weight selection
type StopType string

const (
	StopTypeAirport       StopType = "airport"
	StopTypeFerryTerminal StopType = "ferry_terminal"
	StopTypeGround        StopType = "ground"
)

var ferryKeywords = []string{"паром", "ferry", "переправа", "пристань"}

// Stops known to be ferry terminals even without metadata or a keyword in
// their name. Kept short on purpose; the dataset is expected to tag
// terminals via metadata.type.
var ferryTerminalExceptions = map[string]struct{}{
	"якутск-речной-порт":      {},
	"нижний-бестях-переправа": {},
}

// LooksLikeFerryTerminal reports whether the stop id or name carries a
// ferry keyword. Keyword-only matches are not sufficient for admission to
// the graph; see AdmitStop.
func LooksLikeFerryTerminal(r StopRecord) bool {
	id := strings.ToLower(r.ID)
	name := strings.ToLower(strings.ReplaceAll(r.Name, "ё", "е"))
	for _, kw := range ferryKeywords {
		if strings.Contains(id, kw) || strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// IsFerryTerminal is the classifier used for ferry edges: explicit
// metadata type, then keyword, then the exception list.
func IsFerryTerminal(r StopRecord) bool {
	if r.Metadata["type"] == string(StopTypeFerryTerminal) {
		return true
	}
	if LooksLikeFerryTerminal(r) {
		return true
	}
	_, ok := ferryTerminalExceptions[strings.ToLower(r.ID)]
	return ok
}

// ClassifyStop maps a stop to its transfer-weight class.
func ClassifyStop(r StopRecord) StopType {
	if IsFerryTerminal(r) {
		return StopTypeFerryTerminal
	}
	if r.IsAirport || r.Metadata["type"] == string(StopTypeAirport) {
		return StopTypeAirport
	}
	name := strings.ToLower(r.Name)
	if strings.Contains(name, "аэропорт") || strings.Contains(name, "airport") {
		return StopTypeAirport
	}
	return StopTypeGround
}

// NormalizedCityID returns the canonical cityId of the record.
func (r StopRecord) NormalizedCityID() string {
	return reference.NormalizeCityName(r.CityID)
}
