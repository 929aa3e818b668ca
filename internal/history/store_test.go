package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreAppendAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &Record{
		Name:           appearance.DarkAqua,
		Source:         appearance.SourceUpdated,
		IsDark:         true,
		IsHighContrast: true,
		ColorCount:     2,
		RawText:        "Appearance: NSAppearanceNameDarkAqua HighContrast\n",
	}
	require.NoError(t, store.Append(ctx, rec))
	require.NotEmpty(t, rec.ID)
	require.False(t, rec.InstalledAt.IsZero())

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Name, got.Name)
	require.Equal(t, rec.Source, got.Source)
	require.True(t, got.IsDark)
	require.True(t, got.IsHighContrast)
	require.Equal(t, 2, got.ColorCount)
	require.Equal(t, rec.RawText, got.RawText)
	require.True(t, rec.InstalledAt.Equal(got.InstalledAt))

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStoreAppendValidation(t *testing.T) {
	store := setupTestStore(t)
	require.ErrorIs(t, store.Append(context.Background(), nil), ErrInvalidRecord)
	require.ErrorIs(t, store.Append(context.Background(), &Record{Source: "updated"}), ErrInvalidRecord)
	require.ErrorIs(t, store.Append(context.Background(), &Record{Name: "x"}), ErrInvalidRecord)
}

func TestStoreListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, name := range []string{appearance.Aqua, appearance.DarkAqua, appearance.Aqua} {
		require.NoError(t, store.Append(ctx, &Record{
			Name:        name,
			Source:      appearance.SourceRequested,
			RawText:     "Appearance: " + name + "\n",
			InstalledAt: base.Add(time.Duration(i) * 100 * time.Millisecond),
		}))
	}

	all, err := store.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.True(t, all[0].InstalledAt.After(all[1].InstalledAt))
	require.True(t, all[1].InstalledAt.After(all[2].InstalledAt))

	aqua, err := store.List(ctx, Query{Name: appearance.Aqua, Limit: 1})
	require.NoError(t, err)
	require.Len(t, aqua, 1)
	require.Equal(t, base.Add(200*time.Millisecond), aqua[0].InstalledAt)
}

func TestStoreHookRecordsRegistryInstalls(t *testing.T) {
	store := setupTestStore(t)

	b := &stubBridge{text: "Appearance: NSAppearanceNameDarkAqua\nlabelColor: 1 1 1 1\n"}
	registry := appearance.NewRegistry(b, nil,
		appearance.WithLogger(zerolog.Nop()),
		appearance.WithInstallHook(store.Hook(zerolog.Nop())),
	)

	_, err := registry.Get(context.Background(), appearance.DarkAqua)
	require.NoError(t, err)
	require.True(t, registry.Update("Appearance: NSAppearanceNameDarkAqua\nlabelColor: 0 0 0 1\n"))

	records, err := store.List(context.Background(), Query{Name: appearance.DarkAqua})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, appearance.SourceUpdated, records[0].Source)
	require.Equal(t, appearance.SourceRequested, records[1].Source)
	require.Equal(t, 1, records[0].ColorCount)
}

type stubBridge struct {
	text string
}

func (b *stubBridge) Initialize() bool { return true }

func (b *stubBridge) FetchSnapshotText(ctx context.Context, name string) (string, bool) {
	return b.text, true
}

func (b *stubBridge) FetchEffectiveAppearanceName(ctx context.Context) (string, bool) {
	return appearance.DarkAqua, true
}

func (b *stubBridge) RegisterUpdateCallback(func(string)) {}
