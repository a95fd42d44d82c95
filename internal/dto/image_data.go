package dto

// SnapshotsData is the response payload of the snapshot history endpoint.
type SnapshotsData struct {
	Snapshots []SnapshotInfo `json:"snapshots"`
	ImagesDir string         `json:"imagesDir"`
	Length    int            `json:"length"`
	Limit     int            `json:"limit"`
}
