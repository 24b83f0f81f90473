package graph

import (
	"time"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// Validator bounds for synthesized edge weights, in minutes
const (
	TransferWeightMin = 30.0
	TransferWeightMax = 120.0
	FerryWeightMin    = 20.0
	FerryWeightMax    = 65.0
)

// TransferWeight returns the intra-city transfer weight for an ordered
// stop-type pair. Leaving an airport is faster than entering one because
// check-in dominates the inbound direction.
func TransferWeight(from, to transport.StopType) float64 {
	switch {
	case from == transport.StopTypeAirport && to == transport.StopTypeGround:
		return 90
	case from == transport.StopTypeGround && to == transport.StopTypeAirport:
		return 120
	case from == transport.StopTypeAirport && to == transport.StopTypeFerryTerminal,
		from == transport.StopTypeFerryTerminal && to == transport.StopTypeAirport:
		return 90
	case from == transport.StopTypeFerryTerminal && to == transport.StopTypeGround,
		from == transport.StopTypeGround && to == transport.StopTypeFerryTerminal:
		return 30
	case from == transport.StopTypeGround && to == transport.StopTypeGround:
		return 60
	default:
		return 60
	}
}

// SeasonalFerryWaitMinutes models the crossing wait: navigation season
// April through September runs frequent crossings, the rest of the year
// waits for ice-road or rare crossings.
func SeasonalFerryWaitMinutes(month time.Month) float64 {
	if month >= time.April && month <= time.September {
		return 17.5
	}
	return 37.5
}

// ClampFerryBase forces a schedule-less ferry duration into the accepted
// band before the seasonal wait is added.
func ClampFerryBase(minutes float64) float64 {
	if minutes < FerryWeightMin {
		return FerryWeightMin
	}
	if minutes > FerryWeightMax {
		return FerryWeightMax
	}
	return minutes
}
