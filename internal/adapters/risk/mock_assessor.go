package risk

import (
	"context"
	"sync"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/risk"
)

// MockAssessor is a controllable risk.Assessor for tests
type MockAssessor struct {
	mu sync.Mutex

	// Assessment is returned on every call when Err is nil
	Assessment *risk.Assessment
	// Err makes every call fail
	Err error

	// Calls records the routes passed in
	Calls []*risk.BuiltRoute
}

// AssessRoute records the call and returns the configured result
func (m *MockAssessor) AssessRoute(ctx context.Context, route *risk.BuiltRoute) (*risk.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, route)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Assessment != nil {
		return m.Assessment, nil
	}
	return &risk.Assessment{Score: 25, Level: LevelLow}, nil
}
