package wound

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrUnknownBodypart is returned when a record names a bodypart the owner
// does not have.
var ErrUnknownBodypart = errors.New("wound: unknown bodypart")

// Record is the persisted form of a wound. Extra carries the
// variant-specific document.
type Record struct {
	ID                string
	OwnerID           string
	Bodypart          string
	Variant           string
	DamageType        string
	OriginalDamage    float64
	CurrentDamage     float64
	CurrentPain       float64
	CurrentStun       float64
	TreatmentAttempts uint32
	TendedOutcome     string
	LodgedObject      string
	ActorOrigin       string
	ToolOrigin        string
	Extra             []byte
}

// extra is the variant-specific document stored alongside the common fields.
type extra struct {
	BleedStatus    string             `json:"bleed_status,omitempty"`
	Cleaned        bool               `json:"cleaned,omitempty"`
	CleanAttempted bool               `json:"clean_attempted,omitempty"`
	Stage          string             `json:"stage,omitempty"`
	StageProgress  float64            `json:"stage_progress,omitempty"`
	Relocated      bool               `json:"relocated,omitempty"`
	Reinforced     bool               `json:"reinforced,omitempty"`
	LodgedName     string             `json:"lodged_name,omitempty"`
	Infection      *InfectionSnapshot `json:"infection,omitempty"`
}

// Resolver looks up the references a record holds by id.
type Resolver interface {
	Bodypart(id string) (*Bodypart, bool)
	// Lodged returns the lodged object with id, or nil if it no longer exists.
	Lodged(id, name string) (LodgedObject, error)
}

// ParseBleedStatus maps a display name back to a BleedStatus.
func ParseBleedStatus(s string) (BleedStatus, error) {
	for b := NeverBled; b <= Closed; b++ {
		if b.String() == s {
			return b, nil
		}
	}
	return NeverBled, fmt.Errorf("unknown bleed status %q", s)
}

// ToRecord captures w for persistence.
//
// Postcondition: FromRecord(ToRecord(w)) reconstructs an equivalent wound.
func ToRecord(w Wound) (Record, error) {
	c := w.state()
	rec := Record{
		ID:                c.id,
		OwnerID:           c.owner.ID(),
		Bodypart:          c.part.ID,
		Variant:           w.Variant().String(),
		DamageType:        string(c.damageType),
		OriginalDamage:    c.originalDamage,
		CurrentDamage:     c.currentDamage,
		CurrentPain:       c.currentPain,
		CurrentStun:       c.currentStun,
		TreatmentAttempts: c.attempts,
		TendedOutcome:     c.tended.String(),
		ActorOrigin:       c.actorOrigin,
		ToolOrigin:        c.toolOrigin,
	}
	var x extra
	if c.lodged != nil {
		rec.LodgedObject = c.lodged.ID()
		x.LodgedName = c.lodged.Name()
	}
	switch v := w.(type) {
	case *SimpleWound, *HealingWound:
	case *OrganicWound:
		x.BleedStatus = v.status.String()
		x.Cleaned = v.cleaned
		x.CleanAttempted = v.cleanAttempted
	case *RobotWound:
		x.BleedStatus = v.status.String()
	case *FractureWound:
		x.Stage = v.stage.String()
		x.StageProgress = v.progress
		x.Relocated = v.relocated
		x.Reinforced = v.reinforced
	default:
		panic(fmt.Sprintf("wound.ToRecord: unhandled variant %T", w))
	}
	if s, ok := c.infection.(Snapshotter); ok {
		snap := s.Snapshot()
		x.Infection = &snap
	}
	data, err := json.Marshal(x)
	if err != nil {
		return Record{}, fmt.Errorf("encoding extra for wound %s: %w", c.id, err)
	}
	rec.Extra = data
	return rec, nil
}

// FromRecord rebuilds the variant named by rec.Variant.
//
// Precondition: env and owner must be non-nil.
// Postcondition: Returns ErrUnknownVariant or ErrUnknownBodypart on bad
// references; otherwise a wound owned by owner.
func FromRecord(env *Env, owner Owner, rec Record, res Resolver) (Wound, error) {
	v, err := ParseVariant(rec.Variant)
	if err != nil {
		return nil, err
	}
	part, ok := res.Bodypart(rec.Bodypart)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBodypart, rec.Bodypart)
	}
	tended, err := ParseOutcome(rec.TendedOutcome)
	if err != nil && rec.TendedOutcome != "" {
		return nil, fmt.Errorf("wound %s: %w", rec.ID, err)
	}
	var x extra
	if len(rec.Extra) > 0 {
		if err := json.Unmarshal(rec.Extra, &x); err != nil {
			return nil, fmt.Errorf("decoding extra for wound %s: %w", rec.ID, err)
		}
	}

	c := core{
		env:            env,
		owner:          owner,
		id:             rec.ID,
		part:           part,
		damageType:     DamageType(rec.DamageType),
		originalDamage: rec.OriginalDamage,
		currentDamage:  rec.CurrentDamage,
		currentPain:    rec.CurrentPain,
		currentStun:    rec.CurrentStun,
		actorOrigin:    rec.ActorOrigin,
		toolOrigin:     rec.ToolOrigin,
		attempts:       rec.TreatmentAttempts,
		tended:         tended,
	}
	if rec.LodgedObject != "" {
		obj, err := res.Lodged(rec.LodgedObject, x.LodgedName)
		if err != nil {
			return nil, fmt.Errorf("resolving lodged object for wound %s: %w", rec.ID, err)
		}
		c.lodged = obj
	}
	if x.Infection != nil {
		inf, err := env.Infections.Restore(*x.Infection, rec.ID, part)
		if err != nil {
			return nil, fmt.Errorf("restoring infection for wound %s: %w", rec.ID, err)
		}
		c.infection = inf
	}

	var w Wound
	switch v {
	case VariantSimple:
		w = &SimpleWound{core: c}
	case VariantHealingSimple:
		w = &HealingWound{core: c}
	case VariantSimpleOrganic:
		st, err := parseBleed(x.BleedStatus)
		if err != nil {
			return nil, fmt.Errorf("wound %s: %w", rec.ID, err)
		}
		w = &OrganicWound{
			core:    c,
			bleeder: bleeder{status: st},
			hygiene: hygiene{cleaned: x.Cleaned, cleanAttempted: x.CleanAttempted},
		}
	case VariantRobot:
		st, err := parseBleed(x.BleedStatus)
		if err != nil {
			return nil, fmt.Errorf("wound %s: %w", rec.ID, err)
		}
		w = &RobotWound{core: c, bleeder: bleeder{status: st}}
	case VariantBoneFracture:
		stage := StageTrauma
		if x.Stage != "" {
			if stage, err = ParseStage(x.Stage); err != nil {
				return nil, fmt.Errorf("wound %s: %w", rec.ID, err)
			}
		}
		w = &FractureWound{
			core:       c,
			stage:      stage,
			progress:   x.StageProgress,
			relocated:  x.Relocated,
			reinforced: x.Reinforced,
		}
	default:
		panic(fmt.Sprintf("wound.FromRecord: unhandled variant %s", v))
	}
	w.state().self = w
	return w, nil
}

func parseBleed(s string) (BleedStatus, error) {
	if s == "" {
		return NeverBled, nil
	}
	return ParseBleedStatus(s)
}
