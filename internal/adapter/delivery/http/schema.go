package http

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const statusError = "error"

// shortenRequest represents the structure for a request to shorten a URL.
type shortenRequest struct {
	OriginalURL string `json:"original_url" validate:"required,http_url,max=2048"`
}

// newValidator returns a validator that reports fields by their json names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// ValidateOriginalURL applies the rules of a shorten request to originalURL,
// so callers outside HTTP accept exactly what POST /shorten accepts.
func ValidateOriginalURL(originalURL string) error {
	return newValidator().Struct(shortenRequest{OriginalURL: originalURL})
}

// urlResponse represents a stored URL mapping as returned to clients.
type urlResponse struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	IsActive    bool      `json:"is_active"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// toURLResponse converts an entity.URL to a urlResponse. The short URL is
// derived from baseURL on every call and is never stored.
func toURLResponse(url *entity.URL, baseURL string) urlResponse {
	return urlResponse{
		ID:          url.ID,
		ShortCode:   url.ShortCode,
		ShortURL:    shortURL(baseURL, url.ShortCode),
		OriginalURL: url.OriginalURL,
		IsActive:    url.IsActive,
		Clicks:      url.Clicks,
		CreatedAt:   url.CreatedAt,
	}
}

func shortURL(baseURL, shortCode string) string {
	return strings.TrimRight(baseURL, "/") + "/" + shortCode
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
		Errors: []validationError{
			{Field: "original_url", Message: messageForTag("required")},
		},
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
		Errors: []validationError{
			{Field: "original_url", Message: "expected a JSON object with a string original_url"},
		},
	}

	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	allocationExhaustedResponse = errorResponse{
		Status:  statusError,
		Message: "no short code available, try again later",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url", "http_url":
		return "must be an absolute http or https url"
	case "max":
		return "value is too long"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
