// Package storage persists the application index in a local SQLite
// database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when an application id has no record.
var ErrNotFound = errors.New("application not found")

// Store wraps SQLite access for recorded applications.
type Store struct {
	db *gorm.DB
}

// Open creates the database file if needed and migrates the schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&Application{}); err != nil {
		return nil, fmt.Errorf("auto migrate applications: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// Insert stores a new application. It reports false when the id already
// exists; the existing record stays untouched.
func (s *Store) Insert(ctx context.Context, app *Application) (bool, error) {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(app)
	if tx.Error != nil {
		return false, fmt.Errorf("insert application: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// All returns every recorded application ordered by application date.
func (s *Store) All(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := s.db.WithContext(ctx).Order("applied_at ASC").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Get returns one application by id.
func (s *Store) Get(ctx context.Context, id string) (*Application, error) {
	var app Application
	if err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &app, nil
}

// UpdateStatus sets the status of one application.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	tx := s.db.WithContext(ctx).Model(&Application{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return fmt.Errorf("update application status: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("update application status %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the given applications and returns how many rows went
// away.
func (s *Store) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Application{})
	if tx.Error != nil {
		return 0, fmt.Errorf("delete applications: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// Count returns the number of recorded applications.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Application{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return total, nil
}
