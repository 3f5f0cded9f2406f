package basemap

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tilePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	for i := range img.Pix {
		switch i % 4 {
		case 0:
			img.Pix[i] = c.R
		case 1:
			img.Pix[i] = c.G
		case 2:
			img.Pix[i] = c.B
		case 3:
			img.Pix[i] = c.A
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSourceTile(t *testing.T) {
	data := tilePNG(t, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	s := NewSource(srv.URL+"/{z}/{x}/{y}.png", "", "rivermap-test", nil)
	img, err := s.Tile(context.Background(), 6, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, TileSize, img.Bounds().Dx())
	assert.Equal(t, "/6/10/20.png", path.Load())
}

func TestSourceFallsBackOnPrimaryFailure(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	data := tilePNG(t, color.RGBA{A: 255})
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer fallback.Close()

	s := NewSource(primary.URL+"/{z}/{x}/{y}.png", fallback.URL+"/{z}/{x}/{y}.png", "rivermap-test", nil)
	img, err := s.Tile(context.Background(), 4, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, TileSize, img.Bounds().Dx())
}

func TestSourceErrorWhenAllServersFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewSource(srv.URL+"/{z}/{x}/{y}.png", "", "rivermap-test", nil)
	_, err := s.Tile(context.Background(), 4, 1, 2)
	assert.Error(t, err)
}

func TestSourceServesFromCache(t *testing.T) {
	data := tilePNG(t, color.RGBA{B: 255, A: 255})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	cache := NewTileCache(16, time.Hour)
	s := NewSource(srv.URL+"/{z}/{x}/{y}.png", "", "rivermap-test", cache)

	_, err := s.Tile(context.Background(), 6, 3, 3)
	require.NoError(t, err)
	_, err = s.Tile(context.Background(), 6, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestExpandTemplate(t *testing.T) {
	got := expandTemplate("https://tiles.example.com/{z}/{x}/{y}.png", 7, 12, 34)
	assert.Equal(t, "https://tiles.example.com/7/12/34.png", got)
}
