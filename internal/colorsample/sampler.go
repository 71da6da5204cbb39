// Package colorsample estimates a brand color from a team logo: the
// alpha-weighted average RGB of the image, downscaled for speed.
package colorsample

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"golang.org/x/image/draw"
)

// ErrUnavailable is the soft failure for every way a sample can go wrong:
// empty URL, unreachable host, undecodable payload, fully transparent image.
// Callers leave the color unset and move on; nothing here is fatal.
var ErrUnavailable = errors.New("color sample unavailable")

const (
	maxDim = 64 // longer image side after downscale
	// Pixels with alpha below 32/255 count as transparent background.
	// image.At returns 16-bit channels, so the cut is 32<<8.
	alphaCut = 32 << 8
)

// Sampler fetches logos over HTTP and computes their dominant color.
type Sampler struct {
	client *http.Client
}

// New returns a Sampler with a bounded fetch timeout.
func New() *Sampler {
	return &Sampler{
		client: &http.Client{Timeout: 7 * time.Second},
	}
}

// Dominant fetches url and returns its average opaque color as "#rrggbb".
// Any failure resolves to ErrUnavailable rather than a hard error.
func (s *Sampler) Dominant(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ErrUnavailable
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", ErrUnavailable
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return "", ErrUnavailable
	}
	hex, ok := averageHex(downscale(img))
	if !ok {
		return "", ErrUnavailable
	}
	return hex, nil
}

// downscale shrinks img so its longer side is at most maxDim pixels,
// preserving aspect ratio with a floor of 1.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := w
	if h > long {
		long = h
	}
	if long <= maxDim {
		return img
	}
	ratio := float64(long) / float64(maxDim)
	dw := int(float64(w)/ratio + 0.5)
	dh := int(float64(h)/ratio + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// averageHex averages the RGB channels over pixels that pass the alpha cut.
// The second return is false when no pixel qualifies.
func averageHex(img image.Image) (string, bool) {
	b := img.Bounds()
	var rsum, gsum, bsum, count uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a < alphaCut {
				continue
			}
			rsum += uint64(r >> 8)
			gsum += uint64(g >> 8)
			bsum += uint64(bl >> 8)
			count++
		}
	}
	if count == 0 {
		return "", false
	}
	return fmt.Sprintf("#%02x%02x%02x", uint8(rsum/count), uint8(gsum/count), uint8(bsum/count)), true
}
