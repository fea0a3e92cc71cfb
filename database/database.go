package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-intake-backend/models"
)

type Database struct {
	db          *gorm.DB
	requestRepo *RequestRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB, storeTimeout time.Duration) Database {
	return Database{
		db:          db,
		requestRepo: NewRequestRepo(db, storeTimeout),
	}
}

func (d Database) RequestRepo() *RequestRepo {
	return d.requestRepo
}

// Migrate creates or updates the tables for every persisted model.
func (d Database) Migrate() error {
	return d.db.AutoMigrate(&models.StoredRecord{})
}
