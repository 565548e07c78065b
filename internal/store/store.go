// Package store persists the app's local state: a handful of fixed keys,
// each holding exactly one JSON value that every write replaces. The most
// recent analysis and routine are single slots, not a history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"glowscan/internal/domain"
)

const (
	KeyOnboarding  = "hasCompletedOnboarding"
	KeyRoutine     = "personalRoutine"
	KeyLastResults = "lastResults"
	KeyUserProfile = "userProfile"
)

var ErrNotFound = errors.New("store: key not found")

type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	SaveLastResults(ctx context.Context, result *domain.AnalysisResult) error
	LastResults(ctx context.Context) (*domain.AnalysisResult, error)
	SaveRoutine(ctx context.Context, routine *domain.Routine) error
	Routine(ctx context.Context) (*domain.Routine, error)
	SaveProfile(ctx context.Context, profile *domain.UserProfile) error
	Profile(ctx context.Context) (*domain.UserProfile, error)
	CompleteOnboarding(ctx context.Context) error
	OnboardingComplete(ctx context.Context) (bool, error)
}

type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

func New(db *sql.DB, log *zap.Logger) *SQLiteStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLiteStore{db: db, log: log, now: time.Now}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UnixMilli())
	if err != nil {
		s.log.Error("Failed to write key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	s.log.Debug("Key written", zap.String("key", key), zap.Int("size", len(value)))
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

func (s *SQLiteStore) loadJSON(ctx context.Context, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) SaveLastResults(ctx context.Context, result *domain.AnalysisResult) error {
	return s.saveJSON(ctx, KeyLastResults, result)
}

func (s *SQLiteStore) LastResults(ctx context.Context) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := s.loadJSON(ctx, KeyLastResults, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *SQLiteStore) SaveRoutine(ctx context.Context, routine *domain.Routine) error {
	return s.saveJSON(ctx, KeyRoutine, routine)
}

func (s *SQLiteStore) Routine(ctx context.Context) (*domain.Routine, error) {
	var routine domain.Routine
	if err := s.loadJSON(ctx, KeyRoutine, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	return s.saveJSON(ctx, KeyUserProfile, profile)
}

func (s *SQLiteStore) Profile(ctx context.Context) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := s.loadJSON(ctx, KeyUserProfile, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *SQLiteStore) CompleteOnboarding(ctx context.Context) error {
	return s.Set(ctx, KeyOnboarding, "true")
}

func (s *SQLiteStore) OnboardingComplete(ctx context.Context) (bool, error) {
	v, err := s.Get(ctx, KeyOnboarding)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}
