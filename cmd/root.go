package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cartolab/rivermap/internal/atlas"
	"github.com/cartolab/rivermap/internal/basemap"
	"github.com/cartolab/rivermap/internal/config"
	"github.com/cartolab/rivermap/internal/fetcher"
	"github.com/cartolab/rivermap/internal/geodata"
	"github.com/cartolab/rivermap/internal/render"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rivermap",
	Short: "Render country river maps",
	Long:  "Downloads the Natural Earth countries and HydroRIVERS datasets, extracts a country's mainland, classifies its rivers by size, and renders a styled map as PNG and SVG.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newService wires the dataset manager, renderer, and map service from config.
func newService() *atlas.Service {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	datasets := geodata.NewDatasets(f, cfg.Data.Dir, cfg.Data.CountriesURL, cfg.Data.RiversURL)

	var tiles *basemap.Source
	if cfg.Basemap.Enabled {
		cache := basemap.NewTileCache(cfg.Basemap.CacheEntries, time.Duration(cfg.Basemap.CacheTTLHours)*time.Hour)
		tiles = basemap.NewSource(cfg.Basemap.PrimaryURL, cfg.Basemap.FallbackURL, cfg.Basemap.UserAgent, cache)
	}

	renderer := render.New(tiles, cfg.Output.Dir)
	return atlas.New(datasets, renderer)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
