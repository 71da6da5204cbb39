package colorsample

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func servePNG(t *testing.T, img image.Image) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
}

func TestDominantSolidColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
		}
	}
	srv := servePNG(t, img)
	defer srv.Close()

	got, err := New().Dominant(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "#102030", got)
}

func TestDominantSkipsTransparentPixels(t *testing.T) {
	// Left half opaque red, right half fully transparent. The transparent
	// half must not drag the average toward black.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.Set(x, y, color.NRGBA{R: 0xff, A: 0xff})
			} else {
				img.Set(x, y, color.NRGBA{})
			}
		}
	}
	srv := servePNG(t, img)
	defer srv.Close()

	got, err := New().Dominant(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "#ff0000", got)
}

func TestDominantAllTransparentUnavailable(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	srv := servePNG(t, img)
	defer srv.Close()

	_, err := New().Dominant(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDominantLargeImageDownscaled(t *testing.T) {
	// 400x100 solid color still averages to itself after the <=64px scale.
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{R: 0x40, G: 0x80, B: 0xc0, A: 0xff})
		}
	}
	srv := servePNG(t, img)
	defer srv.Close()

	got, err := New().Dominant(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "#4080c0", got)
}

func TestDominantSoftFailures(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer bad.Close()
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	}))
	defer garbage.Close()

	s := New()
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty url", url: ""},
		{name: "unreachable host", url: "http://127.0.0.1:1/logo.png"},
		{name: "http error status", url: bad.URL},
		{name: "undecodable body", url: garbage.URL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Dominant(context.Background(), tt.url)
			require.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestDownscaleBounds(t *testing.T) {
	wide := downscale(image.NewRGBA(image.Rect(0, 0, 640, 5)))
	b := wide.Bounds()
	require.Equal(t, 64, b.Dx())
	require.GreaterOrEqual(t, b.Dy(), 1)

	small := image.NewRGBA(image.Rect(0, 0, 20, 30))
	require.Equal(t, small.Bounds(), downscale(small).Bounds())
}
