// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package favorites

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/staranto/exefitgo/internal/cacheutil"
	"github.com/staranto/exefitgo/internal/exercise"
)

var (
	ErrUserNotSet = errors.New("no user set; pass --user or set EXEFIT_USER")
)

// Favorite is one exercise a user has starred.
type Favorite struct {
	ID           string    `json:"id" yaml:"id"`
	UserID       string    `json:"userId" yaml:"userId"`
	ExerciseID   int       `json:"exerciseId" yaml:"exerciseId"`
	ExerciseName string    `json:"exerciseName" yaml:"exerciseName"`
	CategoryID   int       `json:"categoryId" yaml:"categoryId"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// FavoriteID is the key a user's favorite is stored under.
func FavoriteID(user string, exerciseID int) string {
	return fmt.Sprintf("%s_%d", user, exerciseID)
}

// --- Persistence Model ---

type favoriteModel struct {
	ID           string    `gorm:"primaryKey"`
	UserID       string    `gorm:"index:idx_favorites_user;not null"`
	ExerciseID   int       `gorm:"index:idx_favorites_exercise;not null"`
	ExerciseName string    `gorm:"not null;default:''"`
	CategoryID   int       `gorm:"default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (favoriteModel) TableName() string {
	return "favorites"
}

func (m favoriteModel) toFavorite() Favorite {
	return Favorite{
		ID:           m.ID,
		UserID:       m.UserID,
		ExerciseID:   m.ExerciseID,
		ExerciseName: m.ExerciseName,
		CategoryID:   m.CategoryID,
		CreatedAt:    m.CreatedAt,
	}
}

// --- Store ---

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// DefaultDSN is the SQLite file used when no DSN is configured.
func DefaultDSN() string {
	base, ok := cacheutil.Dir()
	if !ok {
		return "favorites.db"
	}
	return filepath.Join(base, "favorites.db")
}

// Open connects to dsn and migrates the schema. A postgres:// or
// postgresql:// URL selects Postgres; anything else is a SQLite file path.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN()
	}

	var dialector gorm.Dialector
	sqliteDB := false
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	default:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil { //nolint:mnd
			return nil, fmt.Errorf("failed to create favorites directory: %w", err)
		}
		dialector = sqlite.Open(fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", dsn))
		sqliteDB = true
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	if sqliteDB {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := New(db)
	if err := s.InitSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Debugf("favorites database ready (%s)", db.Dialector.Name())
	return s, nil
}

// New wraps an already opened database. Call InitSchema before use.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the clock used for CreatedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) InitSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&favoriteModel{}); err != nil {
		return fmt.Errorf("failed to migrate favorites schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Add stars ex for user. Adding it again refreshes the stored name, category
// and timestamp.
func (s *Store) Add(ctx context.Context, user string, ex exercise.Exercise) (Favorite, error) {
	if user == "" {
		return Favorite{}, ErrUserNotSet
	}

	m := favoriteModel{
		ID:           FavoriteID(user, ex.ID),
		UserID:       user,
		ExerciseID:   ex.ID,
		ExerciseName: ex.DisplayName(),
		CategoryID:   ex.Category,
		CreatedAt:    s.now(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"exercise_name", "category_id", "created_at"}),
		}).
		Create(&m).Error
	if err != nil {
		return Favorite{}, fmt.Errorf("failed to add favorite: %w", err)
	}

	log.Debugf("added favorite %s", m.ID)
	return m.toFavorite(), nil
}

// Remove un-stars exercise id. Removing something that is not a favorite is
// not an error.
func (s *Store) Remove(ctx context.Context, user string, id int) error {
	if user == "" {
		return ErrUserNotSet
	}

	result := s.db.WithContext(ctx).Delete(&favoriteModel{}, "id = ?", FavoriteID(user, id))
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	log.Debugf("removed favorite %s (%d rows)", FavoriteID(user, id), result.RowsAffected)
	return nil
}

// List returns user's favorites, newest first.
func (s *Store) List(ctx context.Context, user string) ([]Favorite, error) {
	if user == "" {
		return nil, ErrUserNotSet
	}

	var models []favoriteModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", user).
		Order("created_at desc").
		Order("exercise_id desc").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	out := make([]Favorite, 0, len(models))
	for _, m := range models {
		out = append(out, m.toFavorite())
	}
	return out, nil
}

func (s *Store) IsFavorite(ctx context.Context, user string, id int) (bool, error) {
	if user == "" {
		return false, ErrUserNotSet
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&favoriteModel{}).
		Where("id = ?", FavoriteID(user, id)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}
