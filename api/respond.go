package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rpupo63/portfolio-intake-backend/errs"
)

const defaultFallbackMessage = "An error occurred. Please try again later."

type Responder struct {
	logger   zerolog.Logger
	fallback string
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger: logger, fallback: defaultFallbackMessage}
}

// WithFallback sets the message written for errors that are not *errs.ApiErr.
func (r Responder) WithFallback(message string) Responder {
	if message != "" {
		r.fallback = message
	}
	return r
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.writeJSON(w, http.StatusOK, data)
}

func (r Responder) writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteError writes {"detail", "field", "status"}. Causes are logged, never sent.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Detail: r.fallback,
			Status: "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Msg("request failed")
	}

	r.writeJSON(w, apiErr.StatusCode, ErrorResponse{
		Detail: apiErr.Message(),
		Field:  apiErr.Field,
		Status: "error",
	})
}
