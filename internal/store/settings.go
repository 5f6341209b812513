package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/pinchpoint/internal/config"
)

// trackingKey is the settings key holding the persisted tracking options.
const trackingKey = "tracking"

// SettingsRepository stores JSON documents by key.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Delete removes key.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Tracking returns the persisted tracking options decoded over base, so fields
// missing from the stored document keep their base values. It returns ErrNotFound
// when nothing has been saved.
func (r *SettingsRepository) Tracking(base config.Tracking) (config.Tracking, error) {
	value, err := r.Get(trackingKey)
	if err != nil {
		return base, err
	}

	t := base
	if err := jsoniter.UnmarshalFromString(value, &t); err != nil {
		return base, fmt.Errorf("decode tracking settings: %w", err)
	}
	return t, nil
}

// SaveTracking validates and persists t.
func (r *SettingsRepository) SaveTracking(t config.Tracking) error {
	if err := t.Validate(); err != nil {
		return err
	}

	value, err := jsoniter.MarshalToString(t)
	if err != nil {
		return fmt.Errorf("encode tracking settings: %w", err)
	}
	return r.Set(trackingKey, value)
}

// ResetTracking removes the persisted tracking options.
func (r *SettingsRepository) ResetTracking() error {
	err := r.Delete(trackingKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
