package bridge

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const darkText = "Appearance: NSAppearanceNameDarkAqua\nlabelColor: 1 1 1 0.85\n"

// collector gathers pushed updates.
type collector struct {
	mu    sync.Mutex
	texts []string
}

func (c *collector) add(text string) {
	c.mu.Lock()
	c.texts = append(c.texts, text)
	c.mu.Unlock()
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

func TestOnceCachesFailure(t *testing.T) {
	var o Once
	calls := 0
	for i := 0; i < 3; i++ {
		require.False(t, o.Do(func() bool {
			calls++
			return false
		}))
	}
	require.Equal(t, 1, calls)
}

func TestOnceConcurrent(t *testing.T) {
	var (
		o     Once
		mu    sync.Mutex
		calls int
		wg    sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, o.Do(func() bool {
				mu.Lock()
				calls++
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				return true
			}))
		}()
	}
	wg.Wait()
	require.Equal(t, 1, calls)
}

func TestMemoryBridge(t *testing.T) {
	m := NewMemory()
	require.True(t, m.Initialize())

	_, ok := m.FetchSnapshotText(context.Background(), "NSAppearanceNameDarkAqua")
	require.False(t, ok)

	m.Set("NSAppearanceNameDarkAqua", darkText)
	text, ok := m.FetchSnapshotText(context.Background(), "NSAppearanceNameDarkAqua")
	require.True(t, ok)
	require.Equal(t, darkText, text)
	require.Equal(t, 2, m.Fetches())

	_, ok = m.FetchEffectiveAppearanceName(context.Background())
	require.False(t, ok)
	m.SetEffective("NSAppearanceNameDarkAqua")
	name, ok := m.FetchEffectiveAppearanceName(context.Background())
	require.True(t, ok)
	require.Equal(t, "NSAppearanceNameDarkAqua", name)

	require.False(t, m.Push(darkText))
	c := &collector{}
	m.RegisterUpdateCallback(c.add)
	require.True(t, m.Push(darkText))
	require.Equal(t, []string{darkText}, c.snapshot())
}

func TestMemoryBridgeFailInit(t *testing.T) {
	m := NewMemory()
	m.FailInit()
	require.False(t, m.Initialize())
	require.False(t, m.Initialize())
}

func TestDirectoryBridgeFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NSAppearanceNameDarkAqua"+SnapshotExt), []byte(darkText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, EffectiveFile), []byte("NSAppearanceNameDarkAqua\n"), 0o644))

	d := NewDirectory(dir)
	require.True(t, d.Initialize())
	t.Cleanup(func() { _ = d.Close() })

	text, ok := d.FetchSnapshotText(context.Background(), "NSAppearanceNameDarkAqua")
	require.True(t, ok)
	require.Equal(t, darkText, text)

	_, ok = d.FetchSnapshotText(context.Background(), "NSAppearanceNameAqua")
	require.False(t, ok)
	_, ok = d.FetchSnapshotText(context.Background(), "../etc/passwd")
	require.False(t, ok)

	name, ok := d.FetchEffectiveAppearanceName(context.Background())
	require.True(t, ok)
	require.Equal(t, "NSAppearanceNameDarkAqua", name)
}

func TestDirectoryBridgeMissingDir(t *testing.T) {
	d := NewDirectory(filepath.Join(t.TempDir(), "missing"))
	require.False(t, d.Initialize())
	require.NoError(t, d.Close())
}

func TestDirectoryBridgePushesChanges(t *testing.T) {
	dir := t.TempDir()
	d := NewDirectory(dir)
	c := &collector{}
	d.RegisterUpdateCallback(c.add)
	require.True(t, d.Initialize())
	t.Cleanup(func() { _ = d.Close() })

	// Write then rename so the watcher only sees complete content.
	tmp := filepath.Join(dir, "tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(darkText), 0o644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "NSAppearanceNameDarkAqua"+SnapshotExt)))

	require.Eventually(t, func() bool {
		for _, text := range c.snapshot() {
			if text == darkText {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	time.Sleep(50 * time.Millisecond)
	for _, text := range c.snapshot() {
		require.Equal(t, darkText, text)
	}
}

func writeFakeHelper(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell helper requires a POSIX shell")
	}

	script := `#!/bin/sh
case "$1" in
snapshot)
  if [ "$2" = "NSAppearanceNameDarkAqua" ]; then
    printf 'Appearance: NSAppearanceNameDarkAqua\nlabelColor: 1 1 1 0.85\n'
    exit 0
  fi
  exit 1
  ;;
effective)
  echo NSAppearanceNameDarkAqua
  ;;
watch)
  printf 'Appearance: NSAppearanceNameAqua\nlabelColor: 0 0 0 1\n--\n'
  echo '--'
  printf 'Appearance: NSAppearanceNameDarkAqua HighContrast\nlabelColor: 1 1 1 1\n--\n'
  exec sleep 30
  ;;
esac
`
	return writeHelperScript(t, dir, script)
}

func writeHelperScript(t *testing.T, dir, script string) string {
	t.Helper()
	path := filepath.Join(dir, "vappearances-helper")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestHelperBridge(t *testing.T) {
	dir := t.TempDir()
	writeFakeHelper(t, dir)

	h := NewHelper("vappearances-helper", []string{filepath.Join(dir, "nope"), dir})
	require.True(t, h.Initialize())
	require.Equal(t, filepath.Join(dir, "vappearances-helper"), h.Path())
	t.Cleanup(func() { _ = h.Close() })

	ctx := context.Background()
	text, ok := h.FetchSnapshotText(ctx, "NSAppearanceNameDarkAqua")
	require.True(t, ok)
	require.Equal(t, darkText, text)

	_, ok = h.FetchSnapshotText(ctx, "NSAppearanceNameAqua")
	require.False(t, ok)

	name, ok := h.FetchEffectiveAppearanceName(ctx)
	require.True(t, ok)
	require.Equal(t, "NSAppearanceNameDarkAqua", name)

	c := &collector{}
	h.RegisterUpdateCallback(c.add)
	require.Eventually(t, func() bool { return len(c.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, []string{
		"Appearance: NSAppearanceNameAqua\nlabelColor: 0 0 0 1\n",
		"Appearance: NSAppearanceNameDarkAqua HighContrast\nlabelColor: 1 1 1 1\n",
	}, c.snapshot())
}

func TestHelperBridgeFetchMatchesWatchRecord(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell helper requires a POSIX shell")
	}
	dir := t.TempDir()
	// snapshot prints CRLF lines and no final newline; watch prints the
	// same data as a plain record.
	writeHelperScript(t, dir, `#!/bin/sh
case "$1" in
snapshot)
  printf 'Appearance: NSAppearanceNameAqua\r\nlabelColor: 0 0 0 1'
  ;;
watch)
  printf 'Appearance: NSAppearanceNameAqua\nlabelColor: 0 0 0 1\n--\n'
  exec sleep 30
  ;;
esac
`)

	h := NewHelper("vappearances-helper", []string{dir})
	require.True(t, h.Initialize())
	t.Cleanup(func() { _ = h.Close() })

	fetched, ok := h.FetchSnapshotText(context.Background(), "NSAppearanceNameAqua")
	require.True(t, ok)

	c := &collector{}
	h.RegisterUpdateCallback(c.add)
	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, "Appearance: NSAppearanceNameAqua\nlabelColor: 0 0 0 1\n", fetched)
	require.Equal(t, fetched, c.snapshot()[0])
}

func TestNormalizeRecord(t *testing.T) {
	require.Equal(t, "", normalizeRecord(""))
	require.Equal(t, "a\n", normalizeRecord("a"))
	require.Equal(t, "a\nb\n", normalizeRecord("a\r\nb\r\n"))
	require.Equal(t, "a\n", normalizeRecord("a\n"))
}

func TestHelperBridgeNotFound(t *testing.T) {
	h := NewHelper("definitely-not-an-appearance-helper", []string{t.TempDir()})
	require.False(t, h.Initialize())
	require.Empty(t, h.Path())

	_, ok := h.FetchSnapshotText(context.Background(), "NSAppearanceNameAqua")
	require.False(t, ok)

	// No watch process without a located helper.
	h.RegisterUpdateCallback(func(string) {})
	require.NoError(t, h.Close())
}
