package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	FindByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
}

func handleRoot(appName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"message": "Welcome to the " + appName + " API!",
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string) *urlHandler {
	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  baseURL,
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.OriginalURL)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		if errors.Is(err, entity.ErrAllocationExhausted) {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, allocationExhaustedResponse)
			return
		}

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toURLResponse(url, h.baseURL))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		h.renderLookupError(w, r, err)
		return
	}

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.FindByShortCode(r.Context(), shortCode)
	if err != nil {
		h.renderLookupError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url, h.baseURL))
}

func (h *urlHandler) renderLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, entity.ErrURLNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
		return
	}

	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, serverErrorResponse)
}
