package sqlite

import (
	"fmt"

	"ewastevision/internal/model"
)

// DetectionRepository implements repository.DetectionRepository for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// InsertBatch adds multiple detections in a single transaction.
func (r *DetectionRepository) InsertBatch(detections []model.SnapshotDetection) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_detections (snapshot_id, class_name, class_id, x1, y1, x2, y2, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, det := range detections {
		if _, err := stmt.Exec(det.SnapshotID, det.ClassName, det.ClassID, det.X1, det.Y1, det.X2, det.Y2, det.Confidence); err != nil {
			return fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	return tx.Commit()
}

// GetBySnapshotID retrieves all detections for a snapshot.
func (r *DetectionRepository) GetBySnapshotID(snapshotID int64) ([]model.SnapshotDetection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, snapshot_id, class_name, class_id, x1, y1, x2, y2, confidence
		FROM snapshot_detections WHERE snapshot_id = ? ORDER BY id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var detections []model.SnapshotDetection
	for rows.Next() {
		var det model.SnapshotDetection
		if err := rows.Scan(&det.ID, &det.SnapshotID, &det.ClassName, &det.ClassID, &det.X1, &det.Y1, &det.X2, &det.Y2, &det.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, det)
	}

	return detections, rows.Err()
}

// GetClassCounts returns how often each class was recorded.
func (r *DetectionRepository) GetClassCounts() (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT class_name, COUNT(*) FROM snapshot_detections GROUP BY class_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query class counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan class count: %w", err)
		}
		counts[name] = n
	}

	return counts, rows.Err()
}
