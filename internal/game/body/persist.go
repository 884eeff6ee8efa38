package body

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// Store persists wound records.
type Store interface {
	SaveWound(ctx context.Context, rec wound.Record) error
	DeleteWound(ctx context.Context, id string) error
	WoundsByOwner(ctx context.Context, ownerID string) ([]wound.Record, error)
}

// ErrNoSession is returned by a SessionStore that holds nothing for an owner.
var ErrNoSession = errors.New("body: no stored session")

// Session is the body state kept between logins.
type Session struct {
	OwnerID    string
	TemplateID string
	Blood      float64
	LastSeen   time.Time
}

// SessionStore persists sessions.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, ownerID string) (Session, error)
}

// Session captures the body's between-login state as of now.
func (b *Body) Session(now time.Time) Session {
	return Session{OwnerID: b.id, TemplateID: b.tmpl.ID, Blood: b.blood, LastSeen: now}
}

// Dirty returns the number of wounds awaiting a flush.
func (b *Body) Dirty() int { return len(b.dirty) + len(b.removed) }

// Flush saves every changed wound and deletes every removed one. Wounds that
// fail to save stay dirty for the next flush.
//
// Postcondition: Returns nil iff every pending change was written.
func (b *Body) Flush(ctx context.Context, s Store) error {
	ids := make([]string, 0, len(b.dirty))
	for id := range b.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var firstErr error
	for _, id := range ids {
		rec, err := wound.ToRecord(b.dirty[id])
		if err == nil {
			err = s.SaveWound(ctx, rec)
		}
		if err != nil {
			b.logger.Warn("saving wound failed", zap.String("wound", id), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("saving wound %s: %w", id, err)
			}
			continue
		}
		delete(b.dirty, id)
	}
	pending := b.removed[:0]
	for _, id := range b.removed {
		if err := s.DeleteWound(ctx, id); err != nil {
			b.logger.Warn("deleting wound failed", zap.String("wound", id), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("deleting wound %s: %w", id, err)
			}
			pending = append(pending, id)
		}
	}
	b.removed = pending
	return firstErr
}

// Load restores the body's wounds from s, replacing any in memory.
func (b *Body) Load(ctx context.Context, s Store) error {
	recs, err := s.WoundsByOwner(ctx, b.id)
	if err != nil {
		return fmt.Errorf("loading wounds for %s: %w", b.id, err)
	}
	b.wounds = b.wounds[:0]
	for _, rec := range recs {
		w, err := wound.FromRecord(b.env, b, rec, resolver{b})
		if err != nil {
			return fmt.Errorf("loading wounds for %s: %w", b.id, err)
		}
		b.wounds = append(b.wounds, w)
	}
	b.dirty = make(map[string]wound.Wound)
	b.removed = nil
	return nil
}

// resolver resolves record references against a body.
type resolver struct{ b *Body }

func (r resolver) Bodypart(id string) (*wound.Bodypart, bool) { return r.b.Part(id) }

func (r resolver) Lodged(id, name string) (wound.LodgedObject, error) {
	if name == "" {
		name = "foreign object"
	}
	return RestoreObject(id, name), nil
}
