package repository

import (
	"ewastevision/internal/dto"
	"ewastevision/internal/model"
)

// SnapshotRepository defines the interface for stored snapshot metadata.
type SnapshotRepository interface {
	// Create operations
	Insert(s *model.Snapshot) (int64, error)

	// Read operations
	GetByFilename(filename string) (*model.Snapshot, error)
	GetRecent(filter *dto.SnapshotFilters) ([]model.Snapshot, error)
	GetTotalCount() (int, error)

	// Delete operations
	DeleteByFilename(filename string) error
}

// DetectionRepository defines the interface for detections attached to snapshots.
type DetectionRepository interface {
	// Create operations
	InsertBatch(detections []model.SnapshotDetection) error

	// Read operations
	GetBySnapshotID(snapshotID int64) ([]model.SnapshotDetection, error)
	GetClassCounts() (map[string]int, error)
}
