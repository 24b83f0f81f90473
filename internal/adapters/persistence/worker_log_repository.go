package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
)

// GormWorkerLogRepository implements worker.LogRepository using GORM
type GormWorkerLogRepository struct {
	db *gorm.DB
}

// NewGormWorkerLogRepository creates a new GORM worker log repository
func NewGormWorkerLogRepository(db *gorm.DB) *GormWorkerLogRepository {
	return &GormWorkerLogRepository{db: db}
}

// Append persists one log entry
func (r *GormWorkerLogRepository) Append(ctx context.Context, entry *worker.LogEntry) error {
	model := &WorkerLogModel{
		RunID:     entry.RunID,
		WorkerID:  entry.WorkerID,
		Timestamp: entry.Timestamp,
		Level:     entry.Level,
		Message:   entry.Message,
		Metadata:  marshalJSON(entry.Metadata),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append worker log: %w", err)
	}
	entry.ID = model.ID
	return nil
}

// ListByRun retrieves the log trail of one pipeline run in order
func (r *GormWorkerLogRepository) ListByRun(ctx context.Context, runID string) ([]*worker.LogEntry, error) {
	var models []WorkerLogModel
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list worker logs for run %s: %w", runID, err)
	}
	out := make([]*worker.LogEntry, 0, len(models))
	for i := range models {
		m := &models[i]
		out = append(out, &worker.LogEntry{
			ID:        m.ID,
			RunID:     m.RunID,
			WorkerID:  m.WorkerID,
			Timestamp: m.Timestamp,
			Level:     m.Level,
			Message:   m.Message,
			Metadata:  unmarshalStringMap(m.Metadata),
		})
	}
	return out, nil
}
