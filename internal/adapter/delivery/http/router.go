// Package http provides the HTTP delivery layer for the URL shortener service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
)

// ReservedCodes lists single-segment paths served by fixed routes. A short
// code equal to one of them could never be resolved.
var ReservedCodes = []string{"health", "stats", "swagger", "docs"}

// Options holds the settings the router needs besides the use case.
type Options struct {
	AppName  string
	BaseURL  string
	DocsFile string
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	if opts.DocsFile != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/docs/swagger.yml"),
		))

		r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.DocsFile)
		})
	}

	r.Get("/", handleRoot(opts.AppName))
	r.Get("/health", handleHealth)

	h := newURLHandler(urlUseCase, newValidator(), opts.BaseURL)

	r.Post("/shorten", h.shortenURL)
	r.Get("/stats/{shortCode}", h.getURLStats)
	r.Get("/{shortCode}", h.redirect)

	return r
}
