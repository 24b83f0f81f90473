package graphstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
)

// Key layout under the reserved "graph:" prefix. Snapshots live under a
// version keyspace; the current-version pointer flips only after the new
// snapshot is fully written, so readers never observe a partial graph.
const (
	keyPrefix          = "graph:"
	currentVersionKey  = keyPrefix + "current:version"
	currentMetadataKey = keyPrefix + "current:metadata"

	defaultScanBatch = 500
)

func nodesKey(version string) string {
	return fmt.Sprintf("%s%s:nodes", keyPrefix, version)
}

func neighborsKey(version, nodeID string) string {
	return fmt.Sprintf("%s%s:neighbors:%s", keyPrefix, version, nodeID)
}

// RedisGraphStore implements graph.Store over a Redis keyspace
type RedisGraphStore struct {
	client    *goredis.Client
	scanBatch int64
}

// NewRedisGraphStore creates a graph store over the given client
func NewRedisGraphStore(client *goredis.Client) *RedisGraphStore {
	return &RedisGraphStore{client: client, scanBatch: defaultScanBatch}
}

// SaveGraph writes the entire snapshot under the version keyspace and
// sets both current pointers in a single pipelined multi-op
func (s *RedisGraphStore) SaveGraph(ctx context.Context, version string, g *graph.Graph, metadata *graph.Metadata) error {
	nodeIDs := g.NodeIDs()
	if len(nodeIDs) == 0 {
		return fmt.Errorf("refusing to save graph %s with no nodes", version)
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize graph metadata: %w", err)
	}

	pipe := s.client.TxPipeline()

	members := make([]interface{}, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		members = append(members, id)
	}
	pipe.SAdd(ctx, nodesKey(version), members...)

	for nodeID, neighbors := range g.AdjacencyByFrom() {
		raw, err := json.Marshal(neighbors)
		if err != nil {
			return fmt.Errorf("failed to serialize neighbors of %s: %w", nodeID, err)
		}
		pipe.Set(ctx, neighborsKey(version, nodeID), raw, 0)
	}

	pipe.Set(ctx, currentMetadataKey, metadataJSON, 0)
	pipe.Set(ctx, currentVersionKey, version, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write graph snapshot %s: %w", version, err)
	}
	return nil
}

// SetCurrentVersion atomically swaps the active pointer
func (s *RedisGraphStore) SetCurrentVersion(ctx context.Context, version string) error {
	if err := s.client.Set(ctx, currentVersionKey, version, 0).Err(); err != nil {
		return fmt.Errorf("failed to set current graph version: %w", err)
	}
	return nil
}

// CurrentVersion returns "" when no graph has ever been activated
func (s *RedisGraphStore) CurrentVersion(ctx context.Context) (string, error) {
	version, err := s.client.Get(ctx, currentVersionKey).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current graph version: %w", err)
	}
	return version, nil
}

// CurrentMetadata returns the metadata blob written with the last snapshot
func (s *RedisGraphStore) CurrentMetadata(ctx context.Context) (*graph.Metadata, error) {
	raw, err := s.client.Get(ctx, currentMetadataKey).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current graph metadata: %w", err)
	}
	var md graph.Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return nil, fmt.Errorf("failed to parse current graph metadata: %w", err)
	}
	return &md, nil
}

// DeleteGraph removes every key of the version via cursor-based scanning,
// never the blocking KEYS command
func (s *RedisGraphStore) DeleteGraph(ctx context.Context, version string) (int64, error) {
	pattern := fmt.Sprintf("%s%s:*", keyPrefix, version)

	var deleted int64
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, s.scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan graph keys for %s: %w", version, err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete graph keys for %s: %w", version, err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}

// Snapshot resolves the current-version pointer once and returns a
// reader pinned to it. Later activations do not affect the reader.
func (s *RedisGraphStore) Snapshot(ctx context.Context) (graph.Reader, error) {
	version, err := s.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	return &snapshotReader{store: s, version: version}, nil
}

// snapshotReader serves every lookup from one version keyspace
type snapshotReader struct {
	store   *RedisGraphStore
	version string
}

func (r *snapshotReader) Version() string {
	return r.version
}

func (r *snapshotReader) GetNeighbors(ctx context.Context, nodeID string) ([]graph.Neighbor, error) {
	if r.version == "" {
		return []graph.Neighbor{}, nil
	}
	return r.store.neighborsOf(ctx, r.version, nodeID)
}

func (r *snapshotReader) HasNode(ctx context.Context, nodeID string) (bool, error) {
	if r.version == "" {
		return false, nil
	}
	ok, err := r.store.client.SIsMember(ctx, nodesKey(r.version), nodeID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check node %s: %w", nodeID, err)
	}
	return ok, nil
}

func (r *snapshotReader) EdgeWeight(ctx context.Context, fromID, toID string) (float64, bool, error) {
	neighbors, err := r.GetNeighbors(ctx, fromID)
	if err != nil {
		return 0, false, err
	}
	for _, nb := range neighbors {
		if nb.NeighborID == toID {
			return nb.Weight, true, nil
		}
	}
	return 0, false, nil
}

func (r *snapshotReader) EdgeMetadata(ctx context.Context, fromID, toID string) (*graph.EdgeMetadata, bool, error) {
	neighbors, err := r.GetNeighbors(ctx, fromID)
	if err != nil {
		return nil, false, err
	}
	for _, nb := range neighbors {
		if nb.NeighborID == toID {
			md := nb.Metadata
			return &md, true, nil
		}
	}
	return nil, false, nil
}

// GetNeighbors reads against a snapshot taken per call; request-scoped
// code should hold a Snapshot instead
func (s *RedisGraphStore) GetNeighbors(ctx context.Context, nodeID string) ([]graph.Neighbor, error) {
	reader, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return reader.GetNeighbors(ctx, nodeID)
}

func (s *RedisGraphStore) neighborsOf(ctx context.Context, version, nodeID string) ([]graph.Neighbor, error) {
	raw, err := s.client.Get(ctx, neighborsKey(version, nodeID)).Result()
	if errors.Is(err, goredis.Nil) {
		return []graph.Neighbor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read neighbors of %s: %w", nodeID, err)
	}
	var neighbors []graph.Neighbor
	if err := json.Unmarshal([]byte(raw), &neighbors); err != nil {
		return nil, fmt.Errorf("failed to parse neighbors of %s: %w", nodeID, err)
	}
	return neighbors, nil
}

// HasNode reads against a snapshot taken per call
func (s *RedisGraphStore) HasNode(ctx context.Context, nodeID string) (bool, error) {
	reader, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return reader.HasNode(ctx, nodeID)
}

// HasEdge reports whether any edge connects the two nodes
func (s *RedisGraphStore) HasEdge(ctx context.Context, fromID, toID string) (bool, error) {
	_, found, err := s.EdgeWeight(ctx, fromID, toID)
	return found, err
}

// EdgeWeight reads against a snapshot taken per call
func (s *RedisGraphStore) EdgeWeight(ctx context.Context, fromID, toID string) (float64, bool, error) {
	reader, err := s.Snapshot(ctx)
	if err != nil {
		return 0, false, err
	}
	return reader.EdgeWeight(ctx, fromID, toID)
}

// EdgeMetadata reads against a snapshot taken per call
func (s *RedisGraphStore) EdgeMetadata(ctx context.Context, fromID, toID string) (*graph.EdgeMetadata, bool, error) {
	reader, err := s.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	return reader.EdgeMetadata(ctx, fromID, toID)
}

// ExportGraphStructure serializes the current snapshot for backup
func (s *RedisGraphStore) ExportGraphStructure(ctx context.Context) (*graph.Export, error) {
	version, err := s.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == "" {
		return nil, fmt.Errorf("no active graph to export")
	}

	nodes, err := s.client.SMembers(ctx, nodesKey(version)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read node set of %s: %w", version, err)
	}
	sort.Strings(nodes)

	export := &graph.Export{
		Version:   version,
		Nodes:     nodes,
		Neighbors: make(map[string][]graph.Neighbor, len(nodes)),
	}
	for _, nodeID := range nodes {
		neighbors, err := s.neighborsOf(ctx, version, nodeID)
		if err != nil {
			return nil, err
		}
		if len(neighbors) > 0 {
			export.Neighbors[nodeID] = neighbors
		}
	}
	return export, nil
}

// ImportGraphStructure restores an exported snapshot under a fresh
// version and activates it. Symmetric with ExportGraphStructure.
func (s *RedisGraphStore) ImportGraphStructure(ctx context.Context, export *graph.Export, version string) error {
	if export == nil || len(export.Nodes) == 0 {
		return fmt.Errorf("refusing to import an empty graph export")
	}

	pipe := s.client.TxPipeline()

	members := make([]interface{}, 0, len(export.Nodes))
	for _, id := range export.Nodes {
		members = append(members, id)
	}
	pipe.SAdd(ctx, nodesKey(version), members...)

	for nodeID, neighbors := range export.Neighbors {
		raw, err := json.Marshal(neighbors)
		if err != nil {
			return fmt.Errorf("failed to serialize neighbors of %s: %w", nodeID, err)
		}
		pipe.Set(ctx, neighborsKey(version, nodeID), raw, 0)
	}

	pipe.Set(ctx, currentVersionKey, version, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to import graph snapshot %s: %w", version, err)
	}
	return nil
}

// ListVersions enumerates version keyspaces present in the store
func (s *RedisGraphStore) ListVersions(ctx context.Context) ([]string, error) {
	pattern := keyPrefix + "*:nodes"

	seen := make(map[string]struct{})
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, s.scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan graph versions: %w", err)
		}
		for _, key := range keys {
			version := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), ":nodes")
			seen[version] = struct{}{}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions, nil
}

// GraphStatistics recomputes node/edge counts, average out-degree and
// density from the current snapshot
func (s *RedisGraphStore) GraphStatistics(ctx context.Context) (*graph.Statistics, error) {
	version, err := s.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == "" {
		return &graph.Statistics{}, nil
	}

	nodes, err := s.client.SMembers(ctx, nodesKey(version)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read node set of %s: %w", version, err)
	}

	totalEdges := 0
	for _, nodeID := range nodes {
		neighbors, err := s.neighborsOf(ctx, version, nodeID)
		if err != nil {
			return nil, err
		}
		totalEdges += len(neighbors)
	}

	stats := &graph.Statistics{TotalNodes: len(nodes), TotalEdges: totalEdges}
	if len(nodes) > 0 {
		stats.AvgOutDegree = float64(totalEdges) / float64(len(nodes))
	}
	if len(nodes) > 1 {
		stats.DensityPct = float64(totalEdges) / float64(len(nodes)*(len(nodes)-1)) * 100
	}
	return stats, nil
}
