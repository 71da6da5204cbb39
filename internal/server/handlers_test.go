package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mkraus12/courtside/internal/api"
	"github.com/mkraus12/courtside/internal/assets"
	"github.com/mkraus12/courtside/internal/models"
	"github.com/mkraus12/courtside/internal/saves"
)

func newTestServer(t *testing.T) (*api.Client, *Server) {
	t.Helper()
	dir := t.TempDir()
	savesStore, err := saves.Open(filepath.Join(dir, "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { savesStore.Close() })
	assetStore, err := assets.Open(filepath.Join(dir, "assets"))
	require.NoError(t, err)

	srv := New(savesStore, assetStore, clockwork.NewFakeClock(), "")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return api.New(ts.URL), srv
}

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	state, err := client.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, "DOM", state.HomeShort)

	state.HomeName = "FC Test"
	state.HomeShort = ""
	state.HomeScore = 2
	require.NoError(t, client.UpdateState(ctx, state))

	state, err = client.GetState(ctx)
	require.NoError(t, err)
	// The server derives a short for the blank submission.
	require.Equal(t, "FCT", state.HomeShort)
	require.Equal(t, 2, state.HomeScore)
}

func TestSwapSidesTogglesFlag(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	require.NoError(t, client.SwapSides(ctx))
	state, err := client.GetState(ctx)
	require.NoError(t, err)
	require.True(t, state.SidesFlipped)

	require.NoError(t, client.SwapSides(ctx))
	state, err = client.GetState(ctx)
	require.NoError(t, err)
	require.False(t, state.SidesFlipped)
}

func TestTimerEndpoints(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	require.NoError(t, client.Timer(ctx, api.TimerStart))
	state, err := client.GetState(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	require.NoError(t, client.Timer(ctx, api.TimerSecondHalf))
	state, err = client.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, state.Half)
	require.True(t, state.SidesFlipped)
	require.Equal(t, "45:00", state.Timer)

	require.NoError(t, client.Timer(ctx, api.TimerReset))
	state, err = client.GetState(ctx)
	require.NoError(t, err)
	require.False(t, state.Running)
	require.Equal(t, "00:00", state.Timer)
	require.Equal(t, 1, state.Half)
}

func TestSaveAndLoadSlot(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	state, err := client.GetState(ctx)
	require.NoError(t, err)
	state.HomeName = "Uložený"
	state.HomeScore = 4
	require.NoError(t, client.UpdateState(ctx, state))
	require.NoError(t, client.SaveSlot(ctx, "derby"))

	names, err := client.ListSaves(ctx)
	require.NoError(t, err)
	require.Contains(t, names, "derby.json")

	// Wreck the live state, then restore the slot.
	state.HomeName = "Jiný"
	state.HomeScore = 0
	require.NoError(t, client.UpdateState(ctx, state))
	require.NoError(t, client.LoadSlot(ctx, "derby"))

	state, err = client.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, "Uložený", state.HomeName)
	require.Equal(t, 4, state.HomeScore)
}

func TestLoadUnknownSlotFails(t *testing.T) {
	client, _ := newTestServer(t)
	err := client.LoadSlot(context.Background(), "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	state, err := client.GetState(ctx)
	require.NoError(t, err)
	state.AwayName = "Exportovaní"
	state.AwayShort = "EXP"
	require.NoError(t, client.UpdateState(ctx, state))

	payload, err := client.Export(ctx)
	require.NoError(t, err)
	var exported models.Scoreboard
	require.NoError(t, json.Unmarshal(payload, &exported))
	require.Equal(t, "Exportovaní", exported.AwayName)

	// Fresh server, import the export.
	client2, _ := newTestServer(t)
	require.NoError(t, client2.Import(ctx, "backup.json", bytes.NewReader(payload)))
	state, err = client2.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, "Exportovaní", state.AwayName)
	require.Equal(t, "EXP", state.AwayShort)
}

func TestImportRejectsInvalidJSON(t *testing.T) {
	client, _ := newTestServer(t)
	err := client.Import(context.Background(), "bad.json", strings.NewReader("{not json"))
	require.Error(t, err)
}

func TestImportLegacyQRSnapshot(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	legacy := `{"homeName":"Old Build","QRShowEveryMinutes":10,"QRShowDurationSeconds":30}`
	require.NoError(t, client.Import(ctx, "legacy.json", strings.NewReader(legacy)))

	state, err := client.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, 10, state.QREvery)
	require.Equal(t, 30, state.QRDuration)
	require.Equal(t, "OLD", state.HomeShort)
	require.Equal(t, 1, state.Half)
}

func TestSponsorRoutes(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	names, err := client.Sponsors(ctx)
	require.NoError(t, err)
	require.Empty(t, names)

	uploads := []api.Upload{
		{Name: "acme.png", Reader: strings.NewReader("png-bytes")},
		{Name: "globex.png", Reader: strings.NewReader("png-bytes")},
	}
	require.NoError(t, client.UploadSponsors(ctx, uploads))

	names, err = client.Sponsors(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"acme.png", "globex.png"}, names)

	require.NoError(t, client.DeleteSponsor(ctx, "acme.png"))
	names, err = client.Sponsors(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"globex.png"}, names)
}

func TestQRRoutes(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	_, err := client.QR(ctx)
	require.Error(t, err)

	require.NoError(t, client.UploadQR(ctx, api.Upload{Name: "code.png", Reader: strings.NewReader("qr-bytes")}))
	body, err := client.QR(ctx)
	require.NoError(t, err)
	require.Equal(t, "qr-bytes", string(body))
}

func TestStreamDeliversSnapshots(t *testing.T) {
	client, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan models.Scoreboard, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Stream(ctx, func(s models.Scoreboard) {
			select {
			case got <- s:
				cancel()
			default:
			}
		})
	}()

	// The stream always opens with the current snapshot.
	select {
	case state := <-got:
		require.Equal(t, "DOM", state.HomeShort)
	case <-ctx.Done():
		t.Fatal("timed out waiting for stream snapshot")
	}
	<-errCh
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 3, 1, 18, 30, 45, 120e6, time.UTC)
	require.Equal(t, "scoreboard-state-2025-03-01T18-30-45-120Z.json", api.ExportFilename(ts))
}
