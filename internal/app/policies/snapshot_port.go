package policies

import (
	"context"
	"io"
)

// SnapshotStore persists exported calendar snapshots and returns a link to
// the stored object.
type SnapshotStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}
