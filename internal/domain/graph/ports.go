package graph

import "context"

// Statistics summarizes the currently active materialized graph
type Statistics struct {
	TotalNodes   int     `json:"totalNodes"`
	TotalEdges   int     `json:"totalEdges"`
	AvgOutDegree float64 `json:"avgOutDegree"`
	DensityPct   float64 `json:"densityPct"`
}

// Export is the serializable graph structure used for backup and restore
type Export struct {
	Version   string                `json:"version"`
	Nodes     []string              `json:"nodes"`
	Neighbors map[string][]Neighbor `json:"neighbors"`
}

// Reader is a read view pinned to one graph version. All lookups hit the
// same snapshot even when an activation lands mid-request; obtain one via
// Store.Snapshot at the start of a request and use it throughout.
type Reader interface {
	// Version returns "" when no graph was active at snapshot time
	Version() string

	// GetNeighbors returns an empty slice for nodes without out-edges
	GetNeighbors(ctx context.Context, nodeID string) ([]Neighbor, error)

	HasNode(ctx context.Context, nodeID string) (bool, error)

	// EdgeWeight returns found=false when the edge does not exist
	EdgeWeight(ctx context.Context, fromID, toID string) (float64, bool, error)

	// EdgeMetadata returns found=false when the edge does not exist
	EdgeMetadata(ctx context.Context, fromID, toID string) (*EdgeMetadata, bool, error)
}

// Store is the versioned materialized-graph port over the hot KV store.
// Writes come from exactly one worker at a time; readers pin the
// current-version pointer once per request through Snapshot and never see
// a partially written snapshot.
type Store interface {
	// Snapshot resolves the current-version pointer once and returns a
	// Reader pinned to it
	Snapshot(ctx context.Context) (Reader, error)

	// SaveGraph writes the whole snapshot under the version keyspace and
	// flips the current-version pointer in one pipelined batch
	SaveGraph(ctx context.Context, version string, g *Graph, metadata *Metadata) error

	SetCurrentVersion(ctx context.Context, version string) error

	// CurrentVersion returns "" when no graph has ever been activated
	CurrentVersion(ctx context.Context) (string, error)

	CurrentMetadata(ctx context.Context) (*Metadata, error)

	// DeleteGraph removes every key of the version via cursor-based
	// scanning, returning the number of keys deleted
	DeleteGraph(ctx context.Context, version string) (int64, error)

	ExportGraphStructure(ctx context.Context) (*Export, error)
	ImportGraphStructure(ctx context.Context, export *Export, version string) error

	// ListVersions enumerates version keyspaces present in the store
	ListVersions(ctx context.Context) ([]string, error)

	GraphStatistics(ctx context.Context) (*Statistics, error)
}

// MetadataRepository defines persistence operations for graph metadata rows
type MetadataRepository interface {
	Save(ctx context.Context, md *Metadata) error
	GetActive(ctx context.Context) (*Metadata, error)
	GetByVersion(ctx context.Context, version string) (*Metadata, error)

	// ExistsForDatasetVersion is the graph-builder idempotence probe
	ExistsForDatasetVersion(ctx context.Context, datasetVersion string) (bool, error)

	// SetActive clears the active flag on all rows then sets it on the
	// row with the given version, inside one transaction
	SetActive(ctx context.Context, version string) error

	ListVersions(ctx context.Context) ([]string, error)

	// DeleteOld keeps the newest keepCount rows plus the active one and
	// returns the versions of the removed rows so their KV keyspaces can
	// be swept
	DeleteOld(ctx context.Context, keepCount int) ([]string, error)
}
