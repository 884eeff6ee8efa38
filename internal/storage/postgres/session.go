package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mudhealth/internal/game/body"
)

// ErrSessionNotFound is returned when an owner has no stored session.
var ErrSessionNotFound = body.ErrNoSession

// SessionRepository persists body sessions. It implements body.SessionStore.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts s.
func (r *SessionRepository) Save(ctx context.Context, s body.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO body_sessions (owner_id, template_id, blood, last_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			blood = EXCLUDED.blood,
			last_seen = EXCLUDED.last_seen`,
		s.OwnerID, s.TemplateID, s.Blood, s.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", s.OwnerID, err)
	}
	return nil
}

// Get returns the session for ownerID.
//
// Postcondition: Returns ErrSessionNotFound when no row matches.
func (r *SessionRepository) Get(ctx context.Context, ownerID string) (body.Session, error) {
	var s body.Session
	err := r.db.QueryRow(ctx, `
		SELECT owner_id, template_id, blood, last_seen
		FROM body_sessions WHERE owner_id = $1`, ownerID,
	).Scan(&s.OwnerID, &s.TemplateID, &s.Blood, &s.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return body.Session{}, ErrSessionNotFound
		}
		return body.Session{}, fmt.Errorf("fetching session %s: %w", ownerID, err)
	}
	return s, nil
}

// List returns every stored session ordered by owner.
func (r *SessionRepository) List(ctx context.Context) ([]body.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT owner_id, template_id, blood, last_seen
		FROM body_sessions ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	var out []body.Session
	for rows.Next() {
		var s body.Session
		if err := rows.Scan(&s.OwnerID, &s.TemplateID, &s.Blood, &s.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

// Delete removes the session for ownerID. Deleting a missing session is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, ownerID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM body_sessions WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("deleting session %s: %w", ownerID, err)
	}
	return nil
}
