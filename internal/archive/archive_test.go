package archive

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	ts := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.FixedZone("x", -3600))
	require.Equal(t, "clerk/2024/03/08/msg_1.json", Key("msg_1", ts))
	require.Equal(t, "msg_1", DeliveryID(Key("msg_1", ts)))
}

func TestKey_EscapesPathSeparators(t *testing.T) {
	ts := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"../../etc/passwd", "a/b", `a\b`, ".."} {
		key := Key(id, ts)
		require.True(t, strings.HasPrefix(key, "clerk/2024/03/08/"), key)
		require.Equal(t, 4, strings.Count(key, "/"), key)
		require.NotContains(t, strings.TrimPrefix(key, "clerk/2024/03/08/"), "/")
		require.Equal(t, id, DeliveryID(key))
	}
}

func TestLoadMinIOConfig(t *testing.T) {
	os.Unsetenv("MINIO_ENDPOINT")
	os.Unsetenv("MINIO_BUCKET")
	cfg := LoadMinIOConfig()
	require.False(t, cfg.Enabled())
	require.Equal(t, "user-sync-webhooks", cfg.Bucket)

	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_USE_SSL", "true")
	cfg = LoadMinIOConfig()
	require.True(t, cfg.Enabled())
	require.True(t, cfg.UseSSL)
}

func TestNop(t *testing.T) {
	var a Archiver = Nop{}
	require.NoError(t, a.Put(context.Background(), "k", []byte("{}")))
	_, err := a.Get(context.Background(), "k")
	require.Error(t, err)
}

func TestNewMinIOStorage_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), &MinIOConfig{})
	require.Error(t, err)
}
