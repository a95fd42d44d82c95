package dto

import "time"

// SnapshotFilters narrow the snapshot history listing.
type SnapshotFilters struct {
	Source    string
	ClassName string
	After     time.Time
	Limit     int
}
