package watchers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDeliversWriteEvents(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "rc")
	require.NoError(t, os.WriteFile(path, []byte("a=1\n"), 0o600))
	require.NoError(t, w.Add(dir))

	require.NoError(t, os.WriteFile(path, []byte("a=2\n"), 0o600))

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}
