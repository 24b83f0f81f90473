package graph

import (
	"fmt"
	"time"
)

// Metadata is the relational record of one materialized graph version.
// Exactly one metadata row is active at any time.
type Metadata struct {
	ID              int64     `json:"id"`
	Version         string    `json:"version"`
	DatasetVersion  string    `json:"datasetVersion"`
	TotalNodes      int       `json:"totalNodes"`
	TotalEdges      int       `json:"totalEdges"`
	BuildDurationMs int64     `json:"buildDurationMs"`
	StoreKey        string    `json:"storeKey"`
	BackupPath      string    `json:"backupPath"`
	CreatedAt       time.Time `json:"createdAt"`
	Active          bool      `json:"active"`
}

// VersionFromTime derives the version string for a build started at t.
// Uniqueness is all queries rely on; the pipeline is single-writer.
func VersionFromTime(t time.Time) string {
	return fmt.Sprintf("graph-v%d", t.UnixMilli())
}
