package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/pinchpoint/internal/arbiter"
)

// End reasons recorded on an activation.
const (
	EndTimeout      = "timeout"
	EndReplaced     = "replaced"
	EndReconfigured = "reconfigured"
	EndShutdown     = "shutdown"
)

// Activation is one period during which a person was awake.
type Activation struct {
	ID          string           `json:"id"`
	Person      string           `json:"person"`
	PersonIndex int              `json:"person_index"`
	WakeMode    arbiter.WakeMode `json:"wake_mode"`
	StartedAt   time.Time        `json:"started_at"`
	// EndedAt is nil while the activation is open.
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	EndReason string     `json:"end_reason,omitempty"`
}

// ActivationRepository records wake and clear transitions.
type ActivationRepository struct {
	db *sql.DB
}

// Activations returns the activation repository for this store.
func (s *Store) Activations() *ActivationRepository {
	return &ActivationRepository{db: s.db}
}

// Start opens a new activation.
func (r *ActivationRepository) Start(person string, index int, mode arbiter.WakeMode, at time.Time) (*Activation, error) {
	a := &Activation{
		ID:          uuid.New().String(),
		Person:      person,
		PersonIndex: index,
		WakeMode:    mode,
		StartedAt:   at,
	}

	_, err := r.db.Exec(
		`INSERT INTO activations (id, person, person_index, wake_mode, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Person, a.PersonIndex, string(a.WakeMode), a.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// End closes the activation with the given id. Ending an already closed or unknown
// activation returns ErrNotFound.
func (r *ActivationRepository) End(id string, at time.Time, reason string) error {
	result, err := r.db.Exec(
		`UPDATE activations SET ended_at = ?, end_reason = ? WHERE id = ? AND ended_at IS NULL`,
		at, reason, id,
	)
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

// EndOpen closes every open activation, returning how many were closed.
func (r *ActivationRepository) EndOpen(at time.Time, reason string) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE activations SET ended_at = ?, end_reason = ? WHERE ended_at IS NULL`,
		at, reason,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetByID retrieves an activation by its ID.
func (r *ActivationRepository) GetByID(id string) (*Activation, error) {
	row := r.db.QueryRow(
		`SELECT id, person, person_index, wake_mode, started_at, ended_at, end_reason
		 FROM activations WHERE id = ?`,
		id,
	)
	a, err := scanActivation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns up to limit activations, newest first. A limit of zero or less
// returns all of them.
func (r *ActivationRepository) List(limit int) ([]*Activation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, person, person_index, wake_mode, started_at, ended_at, end_reason
		 FROM activations ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activations []*Activation
	for rows.Next() {
		a, err := scanActivation(rows)
		if err != nil {
			return nil, err
		}
		activations = append(activations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return activations, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivation(s scanner) (*Activation, error) {
	a := &Activation{}
	var mode string
	var ended sql.NullTime

	if err := s.Scan(&a.ID, &a.Person, &a.PersonIndex, &mode, &a.StartedAt, &ended, &a.EndReason); err != nil {
		return nil, err
	}

	a.WakeMode = arbiter.WakeMode(mode)
	if ended.Valid {
		t := ended.Time
		a.EndedAt = &t
	}
	return a, nil
}
