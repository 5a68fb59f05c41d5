package content

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  name: Before\n"), 0o644))

	var (
		mu    sync.Mutex
		names []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zap.NewNop(), func(p *Portfolio) {
			mu.Lock()
			names = append(names, p.Profile.Name)
			mu.Unlock()
		})
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  name: broken\nskills: [{id: \"Bad ID\"}]\n"), 0o644))
	time.Sleep(2 * debounce)
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  name: After\n"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(names) > 0 && names[len(names)-1] == "After"
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, names, "broken", "invalid content is never applied")
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "portfolio.yaml"), zap.NewNop(), func(*Portfolio) {})
	assert.Error(t, err)
}

func TestWatchAppliesNothingAfterReturn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  name: Before\n"), 0o644))

	var mu sync.Mutex
	returned, late := false, false
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zap.NewNop(), func(*Portfolio) {
			mu.Lock()
			late = late || returned
			mu.Unlock()
		})
	}()
	time.Sleep(100 * time.Millisecond)

	// a change still inside its debounce window when the watcher stops
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  name: Pending\n"), 0o644))
	time.Sleep(debounce / 2)
	cancel()
	require.NoError(t, <-done)
	mu.Lock()
	returned = true
	mu.Unlock()

	time.Sleep(2 * debounce)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, late, "content applied after Watch returned")
}
