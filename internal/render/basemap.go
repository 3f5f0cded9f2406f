package render

import (
	"context"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cartolab/rivermap/internal/basemap"
)

// tileFetchConcurrency bounds parallel tile downloads per render.
const tileFetchConcurrency = 4

// drawBasemap composites upstream raster tiles under the map. Tiles are
// fetched for the viewport extent at a zoom chosen from the map width, then
// sampled nearest-neighbor into the canvas.
func drawBasemap(ctx context.Context, img *image.RGBA, v viewport, source *basemap.Source) error {
	zoom := basemap.ZoomFor(v.widthMeters())

	tx0, ty0 := basemap.TileAt(v.minX, v.maxY, zoom)
	tx1, ty1 := basemap.TileAt(v.maxX, v.minY, zoom)

	var mu sync.Mutex
	tiles := make(map[[2]int]image.Image)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tileFetchConcurrency)
	for tx := tx0; tx <= tx1; tx++ {
		for ty := ty0; ty <= ty1; ty++ {
			g.Go(func() error {
				tile, err := source.Tile(gctx, zoom, tx, ty)
				if err != nil {
					return err
				}
				mu.Lock()
				tiles[[2]int{tx, ty}] = tile
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for py := 0; py < img.Rect.Dy(); py++ {
		for px := 0; px < img.Rect.Dx(); px++ {
			mx, my := v.toMercator(float64(px)+0.5, float64(py)+0.5)
			gx, gy := basemap.PixelAt(mx, my, zoom)

			tx, ty := int(gx)/basemap.TileSize, int(gy)/basemap.TileSize
			tile, ok := tiles[[2]int{tx, ty}]
			if !ok {
				continue
			}

			ox, oy := int(gx)%basemap.TileSize, int(gy)%basemap.TileSize
			b := tile.Bounds()
			img.Set(px, py, tile.At(b.Min.X+ox, b.Min.Y+oy))
		}
	}
	return nil
}
