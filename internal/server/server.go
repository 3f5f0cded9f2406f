// Package server exposes the map request form and serves rendered artifacts.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartolab/rivermap/internal/country"
	"github.com/cartolab/rivermap/internal/render"
)

// MapService generates a country's map artifacts.
type MapService interface {
	Generate(ctx context.Context, query string) (render.Artifacts, error)
}

// Server handles the web form and artifact downloads.
type Server struct {
	service   MapService
	outputDir string
	countries []string
	tmpl      *template.Template
}

// New creates the web server. The country list fills the form dropdown.
func New(service MapService, outputDir string, countries []string) *Server {
	return &Server{
		service:   service,
		outputDir: outputDir,
		countries: countries,
		tmpl:      template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", s.handleIndex)
	r.Post("/generate", s.handleGenerate)
	r.Get("/output/{filename}", s.handleOutput(false))
	r.Get("/download/png/{filename}", s.handleOutput(true))
	r.Get("/download/svg/{filename}", s.handleOutput(true))

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

// pageData feeds the index template.
type pageData struct {
	Countries []string
	Country   string
	Error     string
	PNGName   string
	SVGName   string
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, pageData{Countries: s.countries, Country: "India"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	query := r.PostFormValue("country")
	data := pageData{Countries: s.countries, Country: query}

	if query == "" {
		data.Error = "Please select a country."
		s.renderPage(w, data)
		return
	}

	artifacts, err := s.service.Generate(r.Context(), query)
	if err != nil {
		if errors.Is(err, country.ErrNotFound) {
			data.Error = fmt.Sprintf("Country %q not found. Try a different name.", query)
		} else {
			zap.L().Error("map generation failed", zap.String("country", query), zap.Error(err))
			data.Error = "Map generation failed. See server logs."
		}
		s.renderPage(w, data)
		return
	}

	data.PNGName = filepath.Base(artifacts.PNG)
	data.SVGName = filepath.Base(artifacts.SVG)
	s.renderPage(w, data)
}

// handleOutput serves a rendered artifact, inline or as an attachment.
func (s *Server) handleOutput(attachment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")
		// Reject any path traversal out of the output dir.
		if name == "" || name == "." || strings.Contains(name, "..") || name != filepath.Base(name) {
			http.Error(w, "invalid filename", http.StatusBadRequest)
			return
		}
		if attachment {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		}
		http.ServeFile(w, r, filepath.Join(s.outputDir, name))
	}
}

func (s *Server) renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		zap.L().Error("template render failed", zap.Error(err))
	}
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Country River Maps</title>
<style>
  body { font-family: sans-serif; max-width: 960px; margin: 2em auto; }
  .error { color: #b00020; }
  img { max-width: 100%; border: 1px solid #ccc; }
</style>
</head>
<body>
<h1>Country River Maps</h1>
<form method="post" action="/generate">
  <label for="country">Country:</label>
  <select id="country" name="country">
    {{- range .Countries}}
    <option value="{{.}}"{{if eq . $.Country}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  <button type="submit">Generate map</button>
</form>
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
{{- if .PNGName}}
<h2>Rivers of {{.Country}}</h2>
<p>
  <a href="/download/png/{{.PNGName}}">Download PNG</a> |
  <a href="/download/svg/{{.SVGName}}">Download SVG</a>
</p>
<img src="/output/{{.PNGName}}" alt="Rivers of {{.Country}}">
{{- end}}
</body>
</html>
`
