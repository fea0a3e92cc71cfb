package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-intake-backend/errs"
	"github.com/rpupo63/portfolio-intake-backend/models"
)

type fakeStore struct {
	mu      sync.Mutex
	records []*models.StoredRecord
	err     error
	panics  bool
}

func (f *fakeStore) Append(_ context.Context, record *models.StoredRecord) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("driver exploded")
	}
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, record)
	record.ID = uint(len(f.records))
	return record.ID, nil
}

type fakeNotifier struct {
	calls  int
	result NotifyResult
	err    error
	panics bool
}

func (f *fakeNotifier) Notify(context.Context, models.Submission) (NotifyResult, error) {
	f.calls++
	if f.panics {
		panic("template exploded")
	}
	return f.result, f.err
}

type brokenSubmission struct{ models.ContactMessage }

func (brokenSubmission) Validate() error { return errors.New("validator misconfigured") }

func validProject() models.ProjectRequest {
	return models.ProjectRequest{
		ClientType:   strPtr("company"),
		CompanyName:  strPtr("Acme"),
		ContactEmail: "a@b.co",
	}
}

func validHiring() models.HiringRequest {
	return models.HiringRequest{
		ClientType:    "company",
		CompanyName:   "Acme",
		PositionTitle: "Engineer",
		Budget:        "$100k",
		Timeline:      "ASAP",
		Requirements:  "Go",
		ContactEmail:  "hr@acme.io",
	}
}

func newTestIntake(store RecordStore, notifier SubmissionNotifier) *IntakeService {
	return NewIntakeService(store, notifier, "Ricardo", "owner@example.com")
}

func requireApiErr(t *testing.T, err error) *errs.ApiErr {
	t.Helper()
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	return apiErr
}

func TestSubmit_Success(t *testing.T) {
	tests := []struct {
		name    string
		sub     models.Submission
		message string
	}{
		{"project", validProject(), "Project request submitted successfully. Ricardo will contact you soon!"},
		{"hiring", validHiring(), "Hiring request submitted successfully. Ricardo will contact you soon!"},
		{"contact", contactSub, "Your message has been sent to Ricardo. You will hear back soon!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			notifier := &fakeNotifier{result: NotifyResult{Status: NotifySent, MessageID: "msg_1"}}
			s := newTestIntake(store, notifier)

			receipt, err := s.Submit(context.Background(), tt.sub)

			require.NoError(t, err)
			assert.Equal(t, tt.message, receipt.Message)
			assert.True(t, receipt.EmailSent)
			require.Len(t, store.records, 1)
			assert.Equal(t, store.records[0].RequestID.String(), receipt.RequestID)
			assert.Equal(t, tt.sub.Kind(), store.records[0].Type)
			assert.Equal(t, 1, notifier.calls)
		})
	}
}

func TestSubmit_RequestIDIsFreshUUIDv4(t *testing.T) {
	store := &fakeStore{}
	s := newTestIntake(store, &fakeNotifier{})

	first, err := s.Submit(context.Background(), contactSub)
	require.NoError(t, err)
	second, err := s.Submit(context.Background(), contactSub)
	require.NoError(t, err)

	assert.NotEqual(t, first.RequestID, second.RequestID)
	for _, r := range []Receipt{first, second} {
		id, err := uuid.Parse(r.RequestID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())
	}
	assert.Len(t, store.records, 2)
}

func TestSubmit_ValidationFailureWritesNothing(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	s := newTestIntake(store, notifier)

	_, err := s.Submit(context.Background(), models.ContactMessage{Email: "bob@example.com", Message: "hi"})

	apiErr := requireApiErr(t, err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Name is required", apiErr.Message())
	assert.Empty(t, store.records)
	assert.Zero(t, notifier.calls)
}

func TestSubmit_StoreFailure(t *testing.T) {
	tests := []struct {
		name    string
		sub     models.Submission
		message string
	}{
		{"project", validProject(), "Failed to store project details"},
		{"hiring", validHiring(), "Failed to store hiring details"},
		{"contact", contactSub, "Failed to store contact details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			s := newTestIntake(&fakeStore{err: errs.ErrNoInsertedID}, notifier)

			_, err := s.Submit(context.Background(), tt.sub)

			apiErr := requireApiErr(t, err)
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message())
			assert.ErrorIs(t, apiErr.Cause, errs.ErrNoInsertedID)
			assert.Zero(t, notifier.calls)
		})
	}
}

func TestSubmit_NotifierFailureStillSucceeds(t *testing.T) {
	store := &fakeStore{}
	s := newTestIntake(store, &fakeNotifier{err: errs.NewEmailProviderError(500, "boom")})

	receipt, err := s.Submit(context.Background(), validHiring())

	require.NoError(t, err)
	assert.False(t, receipt.EmailSent)
	assert.NotEmpty(t, receipt.RequestID)
	assert.Len(t, store.records, 1)
}

func TestSubmit_NotifierPanicStillSucceeds(t *testing.T) {
	store := &fakeStore{}
	s := newTestIntake(store, &fakeNotifier{panics: true})

	receipt, err := s.Submit(context.Background(), contactSub)

	require.NoError(t, err)
	assert.False(t, receipt.EmailSent)
	assert.Len(t, store.records, 1)
}

func TestSubmit_DegradedNotifier(t *testing.T) {
	store := &fakeStore{}
	s := newTestIntake(store, NewNotifier())

	receipt, err := s.Submit(context.Background(), validProject())

	require.NoError(t, err)
	assert.False(t, receipt.EmailSent)
	assert.Len(t, store.records, 1)
}

func TestSubmit_RealNotifierExhaustsRetries(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeEmailSender{failures: -1}
	notifier := NewNotifier(
		WithEmailSender(sender, "from@example.com", "owner@example.com"),
		WithEmailPolicy(fastEmailPolicy()),
	)
	s := newTestIntake(store, notifier)

	receipt, err := s.Submit(context.Background(), contactSub)

	require.NoError(t, err)
	assert.False(t, receipt.EmailSent)
	assert.Equal(t, 3, sender.Calls())
	assert.Len(t, store.records, 1)
}

func TestSubmit_UnexpectedErrorsUseFallback(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
		sub   models.Submission
	}{
		{"store panic", &fakeStore{panics: true}, contactSub},
		{"non-client validation error", &fakeStore{}, brokenSubmission{contactSub}},
		{"nil submission", &fakeStore{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestIntake(tt.store, &fakeNotifier{})

			_, err := s.Submit(context.Background(), tt.sub)

			apiErr := requireApiErr(t, err)
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
			assert.Equal(t, "An error occurred. Please try again or contact Ricardo directly at owner@example.com.", apiErr.Message())
			assert.True(t, errs.IsInternal(apiErr))
		})
	}
}

func TestFallbackMessage_WithoutOperatorEmail(t *testing.T) {
	s := NewIntakeService(&fakeStore{}, &fakeNotifier{}, "Ricardo", "")
	assert.Equal(t, "An error occurred. Please try again later.", s.FallbackMessage())
}

func TestSubmit_UsesInjectedIDAndClock(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &fakeStore{}
	s := NewIntakeService(store, &fakeNotifier{}, "Ricardo", "owner@example.com",
		WithIDGenerator(func() uuid.UUID { return id }),
		WithIntakeClock(func() time.Time { return now }),
	)

	receipt, err := s.Submit(context.Background(), contactSub)

	require.NoError(t, err)
	assert.Equal(t, id.String(), receipt.RequestID)
	require.Len(t, store.records, 1)
	assert.True(t, store.records[0].CreatedAt.Equal(now))
}
