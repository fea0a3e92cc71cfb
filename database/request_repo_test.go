package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-intake-backend/errs"
	"github.com/rpupo63/portfolio-intake-backend/models"
)

func newTestDatabase(t *testing.T) Database {
	t.Helper()

	db, err := openSQLite(context.Background())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	d := New(db, time.Second)
	require.NoError(t, d.Migrate())
	return d
}

func strPtr(s string) *string { return &s }

func TestAppend_ReadBackEveryKind(t *testing.T) {
	repo := newTestDatabase(t).RequestRepo()
	ctx := context.Background()

	submissions := []models.Submission{
		models.ProjectRequest{
			ClientType:   strPtr("company"),
			CompanyName:  strPtr("Acme"),
			Budget:       strPtr("10k"),
			ContactEmail: "cto@acme.example",
		},
		models.HiringRequest{
			ClientType:    "company",
			CompanyName:   "Acme",
			PositionTitle: "Go Engineer",
			Budget:        "$150k",
			Timeline:      "ASAP",
			Requirements:  "chi, gorm",
			ContactEmail:  "hr@acme.example",
		},
		models.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hello there"},
	}

	seen := map[uuid.UUID]bool{}
	for _, sub := range submissions {
		now := time.Now().UTC()
		record, err := models.NewStoredRecord(sub, uuid.New(), now)
		require.NoError(t, err)

		storedID, err := repo.Append(ctx, record)
		require.NoError(t, err)
		assert.NotZero(t, storedID)

		got, err := repo.FindByRequestID(ctx, record.RequestID)
		require.NoError(t, err)

		assert.Equal(t, sub.Kind(), got.Type)
		assert.Equal(t, record.RequestID, got.RequestID)
		assert.Equal(t, uuid.Version(4), got.RequestID.Version())
		assert.WithinDuration(t, now, got.CreatedAt, time.Second)
		assert.False(t, seen[got.RequestID])
		seen[got.RequestID] = true

		decoded, err := got.Submission()
		require.NoError(t, err)
		assert.Equal(t, sub, decoded)
	}
}

func TestAppend_IdenticalPayloadTwiceStoresTwoRecords(t *testing.T) {
	repo := newTestDatabase(t).RequestRepo()
	ctx := context.Background()
	msg := models.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Same text"}

	first, err := models.NewStoredRecord(msg, uuid.New(), time.Now())
	require.NoError(t, err)
	second, err := models.NewStoredRecord(msg, uuid.New(), time.Now())
	require.NoError(t, err)

	firstID, err := repo.Append(ctx, first)
	require.NoError(t, err)
	secondID, err := repo.Append(ctx, second)
	require.NoError(t, err)

	assert.NotEqual(t, firstID, secondID)
	assert.NotEqual(t, first.RequestID, second.RequestID)

	var count int64
	require.NoError(t, repo.GetDB().Model(&models.StoredRecord{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestAppend_DuplicateRequestIDFails(t *testing.T) {
	repo := newTestDatabase(t).RequestRepo()
	ctx := context.Background()
	id := uuid.New()

	first, err := models.NewStoredRecord(models.ContactMessage{Name: "a", Email: "a@b.example", Message: "x"}, id, time.Now())
	require.NoError(t, err)
	_, err = repo.Append(ctx, first)
	require.NoError(t, err)

	second, err := models.NewStoredRecord(models.ContactMessage{Name: "b", Email: "b@b.example", Message: "y"}, id, time.Now())
	require.NoError(t, err)
	_, err = repo.Append(ctx, second)
	assert.Error(t, err)
}

func TestFindByRequestID_NotFound(t *testing.T) {
	repo := newTestDatabase(t).RequestRepo()

	_, err := repo.FindByRequestID(context.Background(), uuid.New())

	assert.True(t, errs.IsNotFound(err))
}
