package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-intake-backend/errs"
	"github.com/rpupo63/portfolio-intake-backend/models"
)

type RecordStore interface {
	Append(ctx context.Context, record *models.StoredRecord) (uint, error)
}

type SubmissionNotifier interface {
	Notify(ctx context.Context, sub models.Submission) (NotifyResult, error)
}

// Receipt is the success body returned for every submission kind.
type Receipt struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	EmailSent bool   `json:"email_sent"`
}

// IntakeService runs validate -> store -> notify for a submission.
// Failures before the write abort the request; failures after it only clear EmailSent.
type IntakeService struct {
	store         RecordStore
	notifier      SubmissionNotifier
	operatorName  string
	operatorEmail string
	newID         func() uuid.UUID
	now           func() time.Time
	logger        zerolog.Logger
}

func WithIDGenerator(newID func() uuid.UUID) func(*IntakeService) {
	return func(s *IntakeService) {
		s.newID = newID
	}
}

func WithIntakeClock(now func() time.Time) func(*IntakeService) {
	return func(s *IntakeService) {
		s.now = now
	}
}

func NewIntakeService(store RecordStore, notifier SubmissionNotifier, operatorName, operatorEmail string, opts ...func(*IntakeService)) *IntakeService {
	s := &IntakeService{
		store:         store,
		notifier:      notifier,
		operatorName:  operatorName,
		operatorEmail: operatorEmail,
		newID:         uuid.New,
		now:           time.Now,
		logger:        log.With().Str("component", "intakeService").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit returns a Receipt, or an *errs.ApiErr: 400 for rule violations, 500 when the write
// fails or anything unexpected happens.
func (s *IntakeService) Submit(ctx context.Context, sub models.Submission) (receipt Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Unexpected error")
			receipt, err = Receipt{}, s.unexpected(fmt.Errorf("panic: %v", r))
		}
	}()

	if sub == nil {
		return Receipt{}, s.unexpected(fmt.Errorf("nil submission"))
	}

	if err := sub.Validate(); err != nil {
		if errs.IsClientError(err) {
			return Receipt{}, err
		}
		return Receipt{}, s.unexpected(err)
	}

	record, err := models.NewStoredRecord(sub, s.newID(), s.now())
	if err != nil {
		return Receipt{}, s.unexpected(err)
	}

	if _, err := s.store.Append(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("type", string(record.Type)).Msg("Database error")
		return Receipt{}, errs.NewStoreError(sub.Kind().Label(), err)
	}

	return Receipt{
		Message:   s.confirmation(sub.Kind()),
		RequestID: record.RequestID.String(),
		EmailSent: s.notify(ctx, sub, record.RequestID),
	}, nil
}

// notify reports whether the email went out. The record is already stored, so every notifier
// failure, panics included, ends here as false.
func (s *IntakeService) notify(ctx context.Context, sub models.Submission, requestID uuid.UUID) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("request_id", requestID.String()).Msg("Notifier panicked")
			sent = false
		}
	}()

	result, err := s.notifier.Notify(ctx, sub)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID.String()).Msg("Email notification failed; request was stored")
		return false
	}
	return result.Sent()
}

func (s *IntakeService) confirmation(kind models.Kind) string {
	switch kind {
	case models.KindProject:
		return fmt.Sprintf("Project request submitted successfully. %s will contact you soon!", s.operatorName)
	case models.KindHiring:
		return fmt.Sprintf("Hiring request submitted successfully. %s will contact you soon!", s.operatorName)
	default:
		return fmt.Sprintf("Your message has been sent to %s. You will hear back soon!", s.operatorName)
	}
}

// FallbackMessage is the text every unexpected failure is reported with.
func (s *IntakeService) FallbackMessage() string {
	if s.operatorEmail == "" {
		return "An error occurred. Please try again later."
	}
	return fmt.Sprintf("An error occurred. Please try again or contact %s directly at %s.", s.operatorName, s.operatorEmail)
}

func (s *IntakeService) unexpected(cause error) *errs.ApiErr {
	s.logger.Error().Err(cause).Msg("Unexpected error")
	return errs.NewUnexpectedError(s.FallbackMessage(), cause)
}
