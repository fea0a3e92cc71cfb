package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-intake-backend/errs"
	"github.com/rpupo63/portfolio-intake-backend/models"
)

// RequestRepo appends submissions to the shared project_requests table. It never retries:
// a retried insert would write a second record under a new request id.
type RequestRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewRequestRepo(db *gorm.DB, timeout time.Duration) *RequestRepo {
	return &RequestRepo{db: db, timeout: timeout}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *RequestRepo) GetDB() *gorm.DB {
	return r.db
}

// Append inserts a fully populated record and returns the identifier the store assigned.
// An insert that reports no identifier counts as a failure.
func (r *RequestRepo) Append(ctx context.Context, record *models.StoredRecord) (uint, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Create(record)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 || record.ID == 0 {
		return 0, errs.ErrNoInsertedID
	}
	return record.ID, nil
}

// FindByRequestID returns the record stored under requestID
func (r *RequestRepo) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*models.StoredRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var record models.StoredRecord
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("request")
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RequestRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
