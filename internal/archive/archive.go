package archive

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
)

// Archiver keeps verified webhook bodies for audit and replay.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Key returns the object key for a delivery received at t. The id is
// path-escaped so it always forms a single final segment.
func Key(deliveryID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("clerk/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), url.PathEscape(deliveryID))
}

// DeliveryID recovers the delivery id from a key built by Key.
func DeliveryID(key string) string {
	base := strings.TrimSuffix(path.Base(key), ".json")
	if id, err := url.PathUnescape(base); err == nil {
		return id
	}
	return base
}

// Nop discards payloads.
type Nop struct{}

func (Nop) Put(context.Context, string, []byte) error { return nil }
func (Nop) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("archive: not configured")
}

func readAll(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}
