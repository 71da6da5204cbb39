package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkraus12/courtside/internal/models"
)

func TestApplyCopiesEditableFields(t *testing.T) {
	store := NewStore()
	snap := store.Apply(models.Scoreboard{
		HomeName: "FC Test", AwayName: "SK Druhá",
		HomeShort: "fct", AwayShort: "SKD",
		HomeScore: 2, AwayScore: 1,
		HomeFouls: 3, AwayFouls: 1,
		HalfLength: 30, Theme: "classic",
		PrimaryColor: "#112233",
	})

	require.Equal(t, "FC Test", snap.HomeName)
	// Lowercase input is normalized before validation.
	require.Equal(t, "FCT", snap.HomeShort)
	require.Equal(t, "SKD", snap.AwayShort)
	require.Equal(t, 2, snap.HomeScore)
	require.Equal(t, 3, snap.HomeFouls)
	require.Equal(t, 30, snap.HalfLength)
	require.Equal(t, "classic", snap.Theme)
	require.Equal(t, "#112233", snap.PrimaryColor)
	// Blank secondary color does not erase the default.
	require.Equal(t, models.Default().SecondaryColor, snap.SecondaryColor)
}

func TestApplyRederivesInvalidShorts(t *testing.T) {
	store := NewStore()
	snap := store.Apply(models.Scoreboard{
		HomeName: "Žlutí Ďáblové", HomeShort: "Z9",
		AwayName: "Hosté", AwayShort: "TOOLONG",
	})
	require.Equal(t, "ZLU", snap.HomeShort)
	require.Equal(t, "HOS", snap.AwayShort)
}

func TestApplyClampsCounters(t *testing.T) {
	store := NewStore()
	snap := store.Apply(models.Scoreboard{
		HomeName: "A", AwayName: "B",
		HomeScore: -3, HomeFouls: 99, AwayFouls: -2,
	})
	require.Equal(t, 0, snap.HomeScore)
	require.Equal(t, models.MaxFouls, snap.HomeFouls)
	require.Equal(t, 0, snap.AwayFouls)
}

func TestApplyLeavesTimerFieldsAlone(t *testing.T) {
	store := NewStore()
	store.Mutate(func(st *models.Scoreboard) {
		st.Running = true
		st.Timer = "12:34"
		st.Half = 2
		st.SidesFlipped = true
	})

	snap := store.Apply(models.Scoreboard{
		HomeName: "A", AwayName: "B",
		Timer: "00:00", Running: false, Half: 1, SidesFlipped: false,
	})
	require.True(t, snap.Running)
	require.Equal(t, "12:34", snap.Timer)
	require.Equal(t, 2, snap.Half)
	require.True(t, snap.SidesFlipped)
}

func TestApplyResolvesLegacyQRFields(t *testing.T) {
	store := NewStore()
	snap := store.Apply(models.Scoreboard{
		HomeName: "A", AwayName: "B",
		LegacyQREvery: 7, LegacyQRDuration: 15,
	})
	require.Equal(t, 7, snap.QREvery)
	require.Equal(t, 15, snap.QRDuration)
}

func TestReplaceFillsDefaults(t *testing.T) {
	store := NewStore()
	snap := store.Replace(models.Scoreboard{
		HomeName: "Nové Město", AwayName: "Staré Město",
		AwayShort: "STM",
	})
	require.Equal(t, "NOV", snap.HomeShort)
	require.Equal(t, "STM", snap.AwayShort)
	require.Equal(t, 1, snap.Half)
}

func TestValidShort(t *testing.T) {
	require.True(t, validShort("ABC"))
	require.False(t, validShort("AB"))
	require.False(t, validShort("AB-"))
	require.False(t, validShort("ab c"))
	require.False(t, validShort("A1C"))
	require.False(t, validShort(""))
}
