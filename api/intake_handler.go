package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-intake-backend/errs"
	"github.com/rpupo63/portfolio-intake-backend/models"
	"github.com/rpupo63/portfolio-intake-backend/services"
)

const maxBodyBytes = 64 << 10

// Submitter is the intake pipeline behind the form endpoints.
type Submitter interface {
	Submit(ctx context.Context, sub models.Submission) (services.Receipt, error)
	FallbackMessage() string
}

type intakeHandler struct {
	responder Responder
	logger    zerolog.Logger
	submitter Submitter
}

func newIntakeHandler(submitter Submitter) intakeHandler {
	logger := log.With().Str("handlerName", "intakeHandler").Logger()

	return intakeHandler{
		responder: NewResponder(logger).WithFallback(submitter.FallbackMessage()),
		logger:    logger,
		submitter: submitter,
	}
}

// createProjectRequest accepts a project inquiry
// @Summary Submit project request
// @Tags Intake
// @Accept json
// @Produce json
// @Param request body models.ProjectRequest true "Project request"
// @Success 200 {object} services.Receipt
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Failed to store project details"
// @Router /api/project-request [post]
func (h intakeHandler) createProjectRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ProjectRequest
		h.submit(w, r, &req, func() models.Submission { return req })
	}
}

// createHiringRequest accepts a hiring inquiry. clientType defaults to company when omitted.
// @Summary Submit hiring request
// @Tags Intake
// @Accept json
// @Produce json
// @Param request body models.HiringRequest true "Hiring request"
// @Success 200 {object} services.Receipt
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Failed to store hiring details"
// @Router /api/hiring-request [post]
func (h intakeHandler) createHiringRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := models.NewHiringRequest()
		h.submit(w, r, &req, func() models.Submission { return req })
	}
}

// createContactMessage accepts a contact form message
// @Summary Submit contact message
// @Tags Intake
// @Accept json
// @Produce json
// @Param request body models.ContactMessage true "Contact message"
// @Success 200 {object} services.Receipt
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Failed to store contact details"
// @Router /api/contact [post]
func (h intakeHandler) createContactMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ContactMessage
		h.submit(w, r, &req, func() models.Submission { return req })
	}
}

// submit decodes the body into target and hands the decoded value, read back through
// submission, to the intake pipeline.
func (h intakeHandler) submit(w http.ResponseWriter, r *http.Request, target any, submission func() models.Submission) {
	if err := decodeBody(w, r, target); err != nil {
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request body")
		h.responder.WriteError(w, err)
		return
	}

	receipt, err := h.submitter.Submit(r.Context(), submission())
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}

	h.responder.WriteJSON(w, receipt)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(target); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return errs.NewMalformedPayloadError("JSON", err)
	}
	return nil
}
