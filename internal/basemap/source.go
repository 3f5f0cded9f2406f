// Package basemap fetches raster XYZ tiles from an upstream tile server for
// use as the map background.
package basemap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // upstream tile formats
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TileSize is the pixel size of an XYZ raster tile.
const TileSize = 256

// Source fetches basemap tiles from a primary tile server, falling back to a
// secondary server when the primary fails.
type Source struct {
	primaryURL  string
	fallbackURL string
	userAgent   string
	client      *http.Client
	cache       *TileCache
}

// NewSource creates a tile source. URL templates use {z}/{x}/{y} placeholders.
func NewSource(primaryURL, fallbackURL, userAgent string, cache *TileCache) *Source {
	return &Source{
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		userAgent:   userAgent,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}
}

// Tile retrieves and decodes one tile. Primary server first, then fallback.
func (s *Source) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	if s.cache != nil {
		if cached := s.cache.Get(z, x, y); cached != nil {
			img, _, err := image.Decode(bytes.NewReader(cached))
			if err == nil {
				return img, nil
			}
		}
	}

	data, err := s.fetch(ctx, s.primaryURL, z, x, y)
	if err != nil && s.fallbackURL != "" {
		zap.L().Warn("basemap: primary tile server failed, trying fallback",
			zap.Int("z", z), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		data, err = s.fetch(ctx, s.fallbackURL, z, x, y)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "basemap: decode tile")
	}

	if s.cache != nil {
		s.cache.Put(z, x, y, data)
	}
	return img, nil
}

// fetch downloads one tile's bytes from a URL template.
func (s *Source) fetch(ctx context.Context, template string, z, x, y int) ([]byte, error) {
	url := expandTemplate(template, z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: create tile request")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: fetch tile")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("basemap: upstream returned %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: read tile body")
	}
	return data, nil
}

// expandTemplate substitutes {z}/{x}/{y} placeholders in a tile URL template.
func expandTemplate(template string, z, x, y int) string {
	r := strings.NewReplacer(
		"{z}", fmt.Sprintf("%d", z),
		"{x}", fmt.Sprintf("%d", x),
		"{y}", fmt.Sprintf("%d", y),
	)
	return r.Replace(template)
}
