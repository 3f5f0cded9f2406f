// Package atlas orchestrates one map request: resolve the country, extract
// its mainland, read the masked rivers, classify them, and render.
package atlas

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartolab/rivermap/internal/country"
	"github.com/cartolab/rivermap/internal/geodata"
	"github.com/cartolab/rivermap/internal/projection"
	"github.com/cartolab/rivermap/internal/render"
	"github.com/cartolab/rivermap/internal/rivers"
)

// Service generates country river maps. Each request works on its own copies
// of the source geometries; the only shared state is the read-only dataset
// files on disk.
type Service struct {
	datasets *geodata.Datasets
	renderer *render.Renderer
}

// New creates the map service.
func New(datasets *geodata.Datasets, renderer *render.Renderer) *Service {
	return &Service{datasets: datasets, renderer: renderer}
}

// Warm downloads any missing dataset ahead of the first request.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.datasets.Ensure(ctx)
	return err
}

// CountryNames lists the distinct sovereignty names of the countries dataset.
func (s *Service) CountryNames(ctx context.Context) ([]string, error) {
	paths, err := s.datasets.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	features, err := geodata.LoadCountries(paths.CountriesShp)
	if err != nil {
		return nil, err
	}
	return geodata.SovereigntyNames(features), nil
}

// Generate renders the river map for the queried country and returns the
// artifact paths. A failed resolution is the only user-facing error;
// degenerate geometry and metric inputs degrade per the documented
// fallbacks instead of failing.
func (s *Service) Generate(ctx context.Context, query string) (render.Artifacts, error) {
	displayName := strings.TrimSpace(query)
	log := zap.L().With(
		zap.String("request_id", uuid.NewString()),
		zap.String("country", displayName),
	)
	log.Info("generating country map")

	paths, err := s.datasets.Ensure(ctx)
	if err != nil {
		return render.Artifacts{}, eris.Wrap(err, "atlas: ensure datasets")
	}

	features, err := geodata.LoadCountries(paths.CountriesShp)
	if err != nil {
		return render.Artifacts{}, eris.Wrap(err, "atlas: load countries")
	}

	selection, err := country.Resolve(features, query)
	if err != nil {
		return render.Artifacts{}, err
	}
	log.Debug("country resolved", zap.Int("features", len(selection)))

	mainland, err := country.ExtractMainland(selection)
	if err != nil {
		return render.Artifacts{}, eris.Wrap(err, "atlas: extract mainland")
	}

	reader, err := geodata.OpenRivers(paths.RiversGPKG)
	if err != nil {
		return render.Artifacts{}, eris.Wrap(err, "atlas: open rivers dataset")
	}
	defer func() { _ = reader.Close() }()

	masked, err := reader.ReadMasked(ctx, geodata.NewMask(mainland.Mask))
	if err != nil {
		return render.Artifacts{}, eris.Wrap(err, "atlas: read masked rivers")
	}

	// Rendering and the length fallback metric both work in Web Mercator.
	region, err := projection.ToWebMercator(mainland.Region)
	if err != nil {
		return render.Artifacts{}, eris.Wrap(err, "atlas: project mainland")
	}
	projected := make([]rivers.River, 0, len(masked))
	for _, riv := range masked {
		g, err := projection.ToWebMercator(riv.Geometry)
		if err != nil {
			return render.Artifacts{}, eris.Wrap(err, "atlas: project river")
		}
		riv.Geometry = g
		projected = append(projected, riv)
	}

	classified := rivers.Classify(projected, reader.HasUpstreamColumn())

	artifacts, err := s.renderer.Render(ctx, region, classified, displayName)
	if err != nil {
		return render.Artifacts{}, eris.Wrap(err, "atlas: render map")
	}

	log.Info("country map generated", zap.Int("rivers", len(classified)))
	return artifacts, nil
}
