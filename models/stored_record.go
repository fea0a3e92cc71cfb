package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StoredRecord is a submission once written. All kinds share one table and one identifier space.
type StoredRecord struct {
	ID        uint              `json:"-" db:"id" gorm:"primaryKey;autoIncrement"`
	RequestID uuid.UUID         `json:"request_id" db:"request_id" gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt time.Time         `json:"created_at" db:"created_at" gorm:"not null"`
	Type      Kind              `json:"type" db:"type" gorm:"type:text;not null;index"`
	Document  datatypes.JSONMap `json:"document" db:"document" gorm:"not null"`
}

func (StoredRecord) TableName() string {
	return "project_requests"
}

// NewStoredRecord tags a submission with its system fields. The document keeps the inbound field names.
func NewStoredRecord(sub Submission, requestID uuid.UUID, createdAt time.Time) (*StoredRecord, error) {
	if sub == nil || !sub.Kind().Valid() {
		return nil, errors.New("stored record requires a known submission kind")
	}
	if requestID == uuid.Nil {
		return nil, errors.New("stored record requires a request id")
	}
	if createdAt.IsZero() {
		return nil, errors.New("stored record requires a creation time")
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", sub.Kind(), err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", sub.Kind(), err)
	}

	return &StoredRecord{
		RequestID: requestID,
		CreatedAt: createdAt.UTC(),
		Type:      sub.Kind(),
		Document:  datatypes.JSONMap(doc),
	}, nil
}

// Submission rebuilds the typed submission from the stored document.
func (r *StoredRecord) Submission() (Submission, error) {
	raw, err := json.Marshal(r.Document)
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case KindProject:
		var p ProjectRequest
		err = json.Unmarshal(raw, &p)
		return p, err
	case KindHiring:
		var h HiringRequest
		err = json.Unmarshal(raw, &h)
		return h, err
	case KindContact:
		var c ContactMessage
		err = json.Unmarshal(raw, &c)
		return c, err
	}
	return nil, fmt.Errorf("unknown record type %q", r.Type)
}
