package transport

import "time"

// DatasetSource tags where a dataset snapshot came from
type DatasetSource string

const (
	SourceOData  DatasetSource = "ODATA"
	SourceMock   DatasetSource = "MOCK"
	SourceHybrid DatasetSource = "HYBRID"
)

// DatasetStatistics carries entity totals for one dataset snapshot
type DatasetStatistics struct {
	TotalStops         int `json:"totalStops"`
	TotalRoutes        int `json:"totalRoutes"`
	TotalFlights       int `json:"totalFlights"`
	TotalVirtualStops  int `json:"totalVirtualStops"`
	TotalVirtualRoutes int `json:"totalVirtualRoutes"`
}

// Dataset is the metadata record for one ingested transport snapshot.
// Exactly one dataset is active at any time.
type Dataset struct {
	ID           int64
	Version      string
	Source       DatasetSource
	QualityScore float64
	Statistics   DatasetStatistics
	ContentHash  string
	CreatedAt    time.Time
	Active       bool
}
