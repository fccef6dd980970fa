package optracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, cooldown time.Duration) *Tracker {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "operations.json"), cooldown)
}

func TestRecordAndQuery(t *testing.T) {
	tr := newTestTracker(t, time.Minute)

	tr.RecordOperation("/tmp/file.txt", "move", SourceWatcher)

	assert.True(t, tr.WasRecentlyOperated("/tmp/file.txt", ""))
	assert.False(t, tr.WasRecentlyOperated("/tmp/other.txt", ""))
}

func TestSelfExclusion(t *testing.T) {
	tr := newTestTracker(t, time.Minute)

	tr.RecordOperation("/tmp/p", "move", "watcher")

	// Excluding the recording source hides the record even in-window
	assert.False(t, tr.WasRecentlyOperated("/tmp/p", "watcher"))
	// A different excluded source still sees it
	assert.True(t, tr.WasRecentlyOperated("/tmp/p", "pipeline"))
}

func TestCooldownExpiry(t *testing.T) {
	tr := newTestTracker(t, 30*time.Millisecond)

	tr.RecordOperation("/tmp/p", "move", SourcePipeline)
	assert.True(t, tr.WasRecentlyOperated("/tmp/p", ""))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, tr.WasRecentlyOperated("/tmp/p", ""))
	assert.Zero(t, tr.Len(), "expired record should have been pruned")
}

func TestPathNormalization(t *testing.T) {
	tr := newTestTracker(t, time.Minute)

	tr.RecordOperation("/Tmp/Sub/../File.TXT", "rename", SourcePipeline)

	assert.True(t, tr.WasRecentlyOperated("/tmp/file.txt", ""))
	assert.True(t, tr.WasRecentlyOperated("/TMP/FILE.txt", ""))
}

func TestNewerRecordReplacesOlder(t *testing.T) {
	tr := newTestTracker(t, time.Minute)

	tr.RecordOperation("/tmp/p", "move", "watcher")
	tr.RecordOperation("/tmp/p", "move", "pipeline")

	// Latest source wins: excluding watcher no longer hides the record
	assert.True(t, tr.WasRecentlyOperated("/tmp/p", "watcher"))
	assert.False(t, tr.WasRecentlyOperated("/tmp/p", "pipeline"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "operations.json")

	tr := New(statePath, time.Minute)
	tr.RecordOperation("/tmp/kept", "move", SourcePipeline)
	require.NoError(t, tr.Shutdown())

	tr2 := New(statePath, time.Minute)
	require.NoError(t, tr2.Initialize())

	assert.True(t, tr2.WasRecentlyOperated("/tmp/kept", ""))
	assert.Equal(t, 1, tr2.Len())
}

func TestInitializeDiscardsExpired(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "operations.json")

	tr := New(statePath, 30*time.Millisecond)
	tr.RecordOperation("/tmp/shortlived", "move", SourcePipeline)
	require.NoError(t, tr.Shutdown())

	time.Sleep(50 * time.Millisecond)

	tr2 := New(statePath, 30*time.Millisecond)
	require.NoError(t, tr2.Initialize())
	assert.Zero(t, tr2.Len())
	assert.False(t, tr2.WasRecentlyOperated("/tmp/shortlived", ""))
}

func TestInitializeMissingFile(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "does-not-exist.json"), time.Minute)
	assert.NoError(t, tr.Initialize())
}

func TestShutdownIdempotent(t *testing.T) {
	tr := newTestTracker(t, time.Minute)
	tr.RecordOperation("/tmp/p", "move", SourcePipeline)

	require.NoError(t, tr.Shutdown())
	require.NoError(t, tr.Shutdown())
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower-cases", "/Tmp/File.TXT", "/tmp/file.txt"},
		{"cleans dot segments", "/a/b/../c/./d", "/a/c/d"},
		{"trailing slash", "/a/b/", "/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.in))
		})
	}
}
