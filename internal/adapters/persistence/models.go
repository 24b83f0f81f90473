package persistence

import (
	"time"
)

// DatasetModel represents the datasets table
type DatasetModel struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Version            string    `gorm:"column:version;unique;not null"`
	Source             string    `gorm:"column:source;not null"`
	QualityScore       float64   `gorm:"column:quality_score;not null;default:0"`
	TotalStops         int       `gorm:"column:total_stops;not null;default:0"`
	TotalRoutes        int       `gorm:"column:total_routes;not null;default:0"`
	TotalFlights       int       `gorm:"column:total_flights;not null;default:0"`
	TotalVirtualStops  int       `gorm:"column:total_virtual_stops;not null;default:0"`
	TotalVirtualRoutes int       `gorm:"column:total_virtual_routes;not null;default:0"`
	ContentHash        string    `gorm:"column:content_hash;index"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
	Active             bool      `gorm:"column:active;not null;default:false"`
}

func (DatasetModel) TableName() string {
	return "datasets"
}

// StopModel represents the stops table (real stops, owned by ingestion)
type StopModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Latitude         float64   `gorm:"column:latitude;not null;check:chk_stops_latitude,latitude >= -90 AND latitude <= 90"`
	Longitude        float64   `gorm:"column:longitude;not null;check:chk_stops_longitude,longitude >= -180 AND longitude <= 180"`
	CityID           string    `gorm:"column:city_id;index"`
	IsAirport        bool      `gorm:"column:is_airport;not null;default:false"`
	IsRailwayStation bool      `gorm:"column:is_railway_station;not null;default:false"`
	Metadata         string    `gorm:"column:metadata;type:text"` // JSON as text
	CreatedAt        time.Time `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"`
}

func (StopModel) TableName() string {
	return "stops"
}

// VirtualStopModel represents the virtual_stops table
type VirtualStopModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Latitude     float64   `gorm:"column:latitude;not null"`
	Longitude    float64   `gorm:"column:longitude;not null"`
	GridType     string    `gorm:"column:grid_type;not null"`
	CityID       string    `gorm:"column:city_id;index"`
	GridPosition string    `gorm:"column:grid_position;type:text"` // JSON as text, empty when absent
	NearbyStops  string    `gorm:"column:nearby_stops;type:text"`  // JSON array as text
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (VirtualStopModel) TableName() string {
	return "virtual_stops"
}

// RouteModel represents the routes table
type RouteModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	TransportType   string    `gorm:"column:transport_type;not null"`
	FromStopID      string    `gorm:"column:from_stop_id;index;not null"`
	ToStopID        string    `gorm:"column:to_stop_id;index;not null"`
	Stops           string    `gorm:"column:stops;type:text"` // JSON array of {stopId, sequence}
	DurationMinutes int       `gorm:"column:duration_minutes;not null;default:0"`
	DistanceKm      float64   `gorm:"column:distance_km;not null;default:0"`
	Operator        string    `gorm:"column:operator"`
	RouteNumber     string    `gorm:"column:route_number"`
	Metadata        string    `gorm:"column:metadata;type:text"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

func (RouteModel) TableName() string {
	return "routes"
}

// VirtualRouteModel represents the virtual_routes table
type VirtualRouteModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	RouteType       string    `gorm:"column:route_type;not null"`
	FromStopID      string    `gorm:"column:from_stop_id;index;not null"`
	ToStopID        string    `gorm:"column:to_stop_id;index;not null"`
	DistanceKm      float64   `gorm:"column:distance_km;not null;default:0"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null;default:0"`
	TransportMode   string    `gorm:"column:transport_mode;not null"`
	Metadata        string    `gorm:"column:metadata;type:text"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
}

func (VirtualRouteModel) TableName() string {
	return "virtual_routes"
}

// FlightModel represents the flights table
type FlightModel struct {
	ID            string  `gorm:"column:id;primaryKey"`
	FromStopID    string  `gorm:"column:from_stop_id;index;not null"`
	ToStopID      string  `gorm:"column:to_stop_id;index;not null"`
	DepartureTime string  `gorm:"column:departure_time;not null"` // HH:MM
	ArrivalTime   string  `gorm:"column:arrival_time;not null"`   // HH:MM
	DaysOfWeek    string  `gorm:"column:days_of_week;type:text"`  // JSON array of ISO weekdays
	RouteID       string  `gorm:"column:route_id;index"`
	PriceRub      float64 `gorm:"column:price_rub;not null;default:0"`
	IsVirtual     bool    `gorm:"column:is_virtual;not null;default:false"`
	TransportType string  `gorm:"column:transport_type"`
	Metadata      string  `gorm:"column:metadata;type:text"`
}

func (FlightModel) TableName() string {
	return "flights"
}

// GraphMetadataModel represents the graphs table
type GraphMetadataModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Version         string    `gorm:"column:version;unique;not null"`
	DatasetVersion  string    `gorm:"column:dataset_version;index;not null"`
	TotalNodes      int       `gorm:"column:total_nodes;not null;default:0"`
	TotalEdges      int       `gorm:"column:total_edges;not null;default:0"`
	BuildDurationMs int64     `gorm:"column:build_duration_ms;not null;default:0"`
	StoreKey        string    `gorm:"column:store_key"`
	BackupPath      string    `gorm:"column:backup_path"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	Active          bool      `gorm:"column:active;not null;default:false"`
}

func (GraphMetadataModel) TableName() string {
	return "graphs"
}

// WorkerLogModel represents the worker_logs table
type WorkerLogModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;index;not null"`
	WorkerID  string    `gorm:"column:worker_id;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"`
}

func (WorkerLogModel) TableName() string {
	return "worker_logs"
}
