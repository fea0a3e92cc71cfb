package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-intake-backend/config"
	"github.com/rpupo63/portfolio-intake-backend/database"
	"github.com/rpupo63/portfolio-intake-backend/errs"
	"github.com/rpupo63/portfolio-intake-backend/models"
)

func fastPolicy() func(*database.ConnectionManager) {
	p := database.DefaultConnectPolicy()
	p.MinWait = time.Millisecond
	p.MaxWait = time.Millisecond
	return database.WithConnectPolicy(p)
}

func TestOpenDatabase_FailsBeforeServing(t *testing.T) {
	opens := 0
	conn := database.NewConnectionManager(func(context.Context) (*gorm.DB, error) {
		opens++
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}, fastPolicy())

	_, err := openDatabase(context.Background(), conn, time.Second)

	require.Error(t, err)
	assert.True(t, errs.IsDatabaseConnectionError(err))
	assert.Equal(t, 5, opens)
	assert.Equal(t, database.Disconnected, conn.State())
}

func TestOpenDatabase_ConnectsAndMigrates(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn := database.NewConnectionManager(func(context.Context) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	}, fastPolicy())
	defer conn.Close()

	db, err := openDatabase(context.Background(), conn, time.Second)

	require.NoError(t, err)
	assert.True(t, db.RequestRepo().GetDB().Migrator().HasTable(&models.StoredRecord{}))
}

func TestNewNotifier_DegradedWithoutKey(t *testing.T) {
	n := newNotifier(config.Settings{})

	result, err := n.Notify(context.Background(), models.ContactMessage{Name: "a", Email: "a@b.co", Message: "hi"})

	require.NoError(t, err)
	assert.False(t, result.Sent())
}
