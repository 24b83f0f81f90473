package risk

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/risk"
)

// Risk levels reported alongside the numeric score
const (
	LevelLow    = "LOW"
	LevelMedium = "MEDIUM"
	LevelHigh   = "HIGH"
)

// LocalAssessor scores built routes in-process. The scoring model is a
// stand-in for the external risk service, so calls still pass through a
// rate limiter shaped like a remote client's.
type LocalAssessor struct {
	limiter *rate.Limiter
}

// NewLocalAssessor creates an assessor throttled to requestsPerSecond
// with the given burst
func NewLocalAssessor(requestsPerSecond, burst int) *LocalAssessor {
	return &LocalAssessor{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// AssessRoute scores one built route. Blocks on the rate limiter, so the
// caller's context deadline bounds the wait.
func (a *LocalAssessor) AssessRoute(ctx context.Context, route *risk.BuiltRoute) (*risk.Assessment, error) {
	if route == nil || len(route.Segments) == 0 {
		return nil, fmt.Errorf("cannot assess an empty route")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("risk assessment throttled: %w", err)
	}

	score := 10.0
	var factors []string

	if route.TransferCount > 0 {
		score += float64(route.TransferCount) * 12
		factors = append(factors, fmt.Sprintf("%d пересадок", route.TransferCount))
	}

	var totalMinutes float64
	for _, seg := range route.Segments {
		totalMinutes += seg.DurationMinutes
	}
	if totalMinutes > 12*60 {
		score += 20
		factors = append(factors, "маршрут длиннее 12 часов")
	} else if totalMinutes > 6*60 {
		score += 10
	}

	for _, tt := range route.TransportTypes {
		if tt == "FERRY" {
			score += 15
			factors = append(factors, "паромная переправа")
			break
		}
	}

	if score > 100 {
		score = 100
	}

	level := LevelLow
	switch {
	case score >= 60:
		level = LevelHigh
	case score >= 30:
		level = LevelMedium
	}

	return &risk.Assessment{Score: score, Level: level, Factors: factors}, nil
}
