package icon

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// minimal ICO header: reserved, type 1, one image
var icoHeader = []byte{0, 0, 1, 0, 1, 0, 16, 16, 0, 0, 1, 0, 32, 0, 0, 0, 0, 0, 22, 0, 0, 0}

func TestSniff(t *testing.T) {
	mime, err := Sniff("logo.png", pngBytes(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, MimePNG, mime)

	mime, err = Sniff("favicon.ico", icoHeader)
	require.NoError(t, err)
	assert.Equal(t, MimeICO, mime)

	_, err = Sniff("logo.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Sniff("logo.png", []byte(`<html><script>alert(1)</script></html>`))
	assert.ErrorIs(t, err, ErrScriptable)

	_, err = Sniff("logo.png", []byte("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Sniff("logo.png", nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNormalizeProducesSquarePNG(t *testing.T) {
	out, err := Normalize(pngBytes(t, 64, 32))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, Size, img.Bounds().Dx())
	assert.Equal(t, Size, img.Bounds().Dy())

	// padding above the wide image stays transparent
	_, _, _, a := img.At(Size/2, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(Size/2, Size/2).RGBA()
	assert.NotZero(t, a)
}

func TestUploadToLocalStore(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&LocalStore{Dir: dir, URLBase: "/uploads/icons/"}, 1<<20, nil)

	url, err := svc.Upload(context.Background(), "logo.png", bytes.NewReader(pngBytes(t, 300, 300)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/icons/favicon-"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Size, cfg.Width)

	url, err = svc.Upload(context.Background(), "favicon.ico", bytes.NewReader(icoHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".ico"), url)
}

func TestUploadRejectsLargeFiles(t *testing.T) {
	svc := NewService(&LocalStore{Dir: t.TempDir(), URLBase: "/icons"}, 16, nil)
	_, err := svc.Upload(context.Background(), "logo.png", bytes.NewReader(pngBytes(t, 8, 8)))
	assert.ErrorIs(t, err, ErrTooLarge)
}
