package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"
)

const archivePrefix = "tournaments"

// SnapshotArchiver keeps finished tournament snapshots in object storage.
type SnapshotArchiver struct {
	uploader FileUploader
}

func NewSnapshotArchiver(uploader FileUploader) *SnapshotArchiver {
	return &SnapshotArchiver{uploader: uploader}
}

// ArchiveKey is the object key of a tournament finished at the given time.
func ArchiveKey(finishedAt time.Time) string {
	return path.Join(archivePrefix, finishedAt.UTC().Format(time.RFC3339)+".json")
}

// Archive uploads a JSON snapshot and returns its public location.
func (a *SnapshotArchiver) Archive(ctx context.Context, finishedAt time.Time, snapshot []byte) (string, error) {
	key := ArchiveKey(finishedAt)
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(snapshot))
	if err != nil {
		return "", fmt.Errorf("failed to archive tournament: %w", err)
	}
	return result.Location, nil
}
