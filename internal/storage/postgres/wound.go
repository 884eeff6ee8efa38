package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// ErrWoundNotFound is returned when a wound lookup yields no results.
var ErrWoundNotFound = errors.New("wound not found")

// WoundRepository persists wound records. It implements body.Store.
type WoundRepository struct {
	db *pgxpool.Pool
}

// NewWoundRepository creates a WoundRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewWoundRepository(db *pgxpool.Pool) *WoundRepository {
	return &WoundRepository{db: db}
}

const woundColumns = `id, owner_id, bodypart, variant, damage_type,
	original_damage, current_damage, current_pain, current_stun,
	treatment_attempts, tended_outcome, lodged_object, actor_origin, tool_origin, extra`

// SaveWound inserts rec or replaces the stored row with the same id.
//
// Precondition: rec.ID and rec.OwnerID must be non-empty.
func (r *WoundRepository) SaveWound(ctx context.Context, rec wound.Record) error {
	extra := rec.Extra
	if len(extra) == 0 {
		extra = []byte("{}")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO wounds (`+woundColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			bodypart = EXCLUDED.bodypart,
			variant = EXCLUDED.variant,
			damage_type = EXCLUDED.damage_type,
			original_damage = EXCLUDED.original_damage,
			current_damage = EXCLUDED.current_damage,
			current_pain = EXCLUDED.current_pain,
			current_stun = EXCLUDED.current_stun,
			treatment_attempts = EXCLUDED.treatment_attempts,
			tended_outcome = EXCLUDED.tended_outcome,
			lodged_object = EXCLUDED.lodged_object,
			actor_origin = EXCLUDED.actor_origin,
			tool_origin = EXCLUDED.tool_origin,
			extra = EXCLUDED.extra,
			updated_at = NOW()`,
		rec.ID, rec.OwnerID, rec.Bodypart, rec.Variant, rec.DamageType,
		rec.OriginalDamage, rec.CurrentDamage, rec.CurrentPain, rec.CurrentStun,
		int32(rec.TreatmentAttempts), rec.TendedOutcome, rec.LodgedObject,
		rec.ActorOrigin, rec.ToolOrigin, extra,
	)
	if err != nil {
		return fmt.Errorf("saving wound %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteWound removes the wound with id. Deleting a missing wound is a no-op.
func (r *WoundRepository) DeleteWound(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM wounds WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting wound %s: %w", id, err)
	}
	return nil
}

// WoundsByOwner returns every wound owned by ownerID, oldest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *WoundRepository) WoundsByOwner(ctx context.Context, ownerID string) ([]wound.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+woundColumns+`
		FROM wounds WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing wounds for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var out []wound.Record
	for rows.Next() {
		rec, err := scanWound(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning wound: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wounds: %w", err)
	}
	return out, nil
}

// GetWound returns the wound with id.
//
// Postcondition: Returns ErrWoundNotFound when no row matches.
func (r *WoundRepository) GetWound(ctx context.Context, id string) (wound.Record, error) {
	row := r.db.QueryRow(ctx, `SELECT `+woundColumns+` FROM wounds WHERE id = $1`, id)
	rec, err := scanWound(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wound.Record{}, ErrWoundNotFound
		}
		return wound.Record{}, fmt.Errorf("fetching wound %s: %w", id, err)
	}
	return rec, nil
}

func scanWound(row pgx.Row) (wound.Record, error) {
	var rec wound.Record
	var attempts int32
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Bodypart, &rec.Variant, &rec.DamageType,
		&rec.OriginalDamage, &rec.CurrentDamage, &rec.CurrentPain, &rec.CurrentStun,
		&attempts, &rec.TendedOutcome, &rec.LodgedObject, &rec.ActorOrigin, &rec.ToolOrigin,
		&rec.Extra,
	)
	rec.TreatmentAttempts = uint32(attempts)
	return rec, err
}
