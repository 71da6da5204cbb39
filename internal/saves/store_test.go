package saves

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mkraus12/courtside/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC))
	store, err := OpenWithClock(filepath.Join(t.TempDir(), "saves.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	state := models.Default()
	state.HomeName = "FC Test"
	state.HomeScore = 3

	name, err := store.Save(ctx, "derby", state)
	require.NoError(t, err)
	require.Equal(t, "derby.json", name)

	got, err := store.Load(ctx, "derby")
	require.NoError(t, err)
	require.Equal(t, "FC Test", got.HomeName)
	require.Equal(t, 3, got.HomeScore)
}

func TestSaveBlankNameGetsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	name, err := store.Save(ctx, "", models.Default())
	require.NoError(t, err)
	require.Equal(t, "20250301-183000.json", name)
}

func TestSaveOverwritesExistingSlot(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := models.Default()
	first.HomeScore = 1
	_, err := store.Save(ctx, "slot", first)
	require.NoError(t, err)

	second := models.Default()
	second.HomeScore = 2
	_, err = store.Save(ctx, "slot", second)
	require.NoError(t, err)

	got, err := store.Load(ctx, "slot")
	require.NoError(t, err)
	require.Equal(t, 2, got.HomeScore)

	names, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"slot.json"}, names)
}

func TestLoadUnknownSlot(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "derby", want: "derby"},
		{in: "../../etc/passwd", want: "....etcpasswd"},
		{in: "a b\\c/d", want: "abcd"},
		{in: "Final_2025-03.json", want: "Final_2025-03.json"},
		{in: "  padded  ", want: "padded"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SanitizeName(tt.in), "input %q", tt.in)
	}
}
