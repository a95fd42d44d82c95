package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"ewastevision/internal/dto"
	"ewastevision/internal/model"
)

// SnapshotRepository implements repository.SnapshotRepository for SQLite.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SQLite snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Insert adds a new snapshot record to the database.
func (r *SnapshotRepository) Insert(s *model.Snapshot) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO snapshots (filename, source, timestamp, filepath, filesize)
		VALUES (?, ?, ?, ?, ?)
	`, s.Filename, s.Source, s.Timestamp, s.FilePath, s.FileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return result.LastInsertId()
}

// GetByFilename retrieves a snapshot by its filename. It returns nil, nil when absent.
func (r *SnapshotRepository) GetByFilename(filename string) (*model.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var s model.Snapshot
	err := r.db.Conn().QueryRow(`
		SELECT id, filename, source, timestamp, filepath, filesize
		FROM snapshots WHERE filename = ?
	`, filename).Scan(&s.ID, &s.Filename, &s.Source, &s.Timestamp, &s.FilePath, &s.FileSize)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &s, nil
}

// GetRecent returns snapshots newest first, narrowed by filter.
func (r *SnapshotRepository) GetRecent(filter *dto.SnapshotFilters) ([]model.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT DISTINCT s.id, s.filename, s.source, s.timestamp, s.filepath, s.filesize
		FROM snapshots s
		LEFT JOIN snapshot_detections d ON s.id = d.snapshot_id
		WHERE 1=1
	`
	args := []interface{}{}

	if filter != nil {
		if filter.Source != "" {
			query += " AND s.source = ?"
			args = append(args, filter.Source)
		}
		if filter.ClassName != "" {
			query += " AND d.class_name = ?"
			args = append(args, filter.ClassName)
		}
		if !filter.After.IsZero() {
			query += " AND s.timestamp > ?"
			args = append(args, filter.After)
		}
	}

	query += " ORDER BY s.timestamp DESC, s.id DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		var s model.Snapshot
		if err := rows.Scan(&s.ID, &s.Filename, &s.Source, &s.Timestamp, &s.FilePath, &s.FileSize); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// GetTotalCount returns the number of stored snapshots.
func (r *SnapshotRepository) GetTotalCount() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// DeleteByFilename removes a snapshot and, through the cascade, its detections.
func (r *SnapshotRepository) DeleteByFilename(filename string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM snapshots WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
