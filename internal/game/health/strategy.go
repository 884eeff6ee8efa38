// Package health provides the strategies an owning body uses to size each
// healing quantum.
package health

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// Quanta is the healing amount per passing outcome for one heal kind.
type Quanta struct {
	MinorPass float64 `yaml:"minor_pass"`
	Pass      float64 `yaml:"pass"`
	MajorPass float64 `yaml:"major_pass"`
}

// For returns the quantum for o, or 0 for failures.
func (q Quanta) For(o wound.Outcome) float64 {
	switch o {
	case wound.MinorPass:
		return q.MinorPass
	case wound.Pass:
		return q.Pass
	case wound.MajorPass:
		return q.MajorPass
	default:
		return 0
	}
}

// TableStrategy reads quanta from a fixed table. With PerCapacity set the
// damage quantum is a fraction of the wounded part's capacity.
type TableStrategy struct {
	Name        string `yaml:"name"`
	Damage      Quanta `yaml:"damage"`
	Pain        Quanta `yaml:"pain"`
	Stun        Quanta `yaml:"stun"`
	PerCapacity bool   `yaml:"per_capacity"`
}

// DefaultStrategy returns the compiled-in table.
func DefaultStrategy() *TableStrategy {
	return &TableStrategy{
		Name:   "default",
		Damage: Quanta{MinorPass: 0.05, Pass: 0.1, MajorPass: 0.2},
		Pain:   Quanta{MinorPass: 0.1, Pass: 0.2, MajorPass: 0.4},
		Stun:   Quanta{MinorPass: 0.5, Pass: 1, MajorPass: 2},
	}
}

// HealingQuantum implements wound.HealthStrategy.
func (s *TableStrategy) HealingQuantum(w wound.Wound, o wound.Outcome, kind wound.HealKind) float64 {
	switch kind {
	case wound.HealDamage:
		q := s.Damage.For(o)
		if s.PerCapacity && w != nil && w.Bodypart() != nil {
			q *= w.Bodypart().Capacity
		}
		return q
	case wound.HealPain:
		return s.Pain.For(o)
	case wound.HealStun:
		return s.Stun.For(o)
	default:
		panic(fmt.Sprintf("health.TableStrategy: unhandled heal kind %s", kind))
	}
}

// Validate rejects negative quanta.
func (s *TableStrategy) Validate() error {
	var errs []error
	for name, q := range map[string]Quanta{"damage": s.Damage, "pain": s.Pain, "stun": s.Stun} {
		if q.MinorPass < 0 || q.Pass < 0 || q.MajorPass < 0 {
			errs = append(errs, fmt.Errorf("strategy %q: %s quanta must be >= 0", s.Name, name))
		}
	}
	return errors.Join(errs...)
}

// LoadStrategy reads a TableStrategy from a YAML file. Fields missing from
// the file keep their DefaultStrategy values.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a validated strategy or a non-nil error.
func LoadStrategy(path string) (*TableStrategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strategy %q: %w", path, err)
	}
	s := DefaultStrategy()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Fallback chains a primary strategy to a secondary one. When the primary
// reports ok=false the secondary is used.
type Fallback struct {
	Primary   Provider
	Secondary wound.HealthStrategy
}

// Provider is a strategy that can decline to answer.
type Provider interface {
	Quantum(w wound.Wound, o wound.Outcome, kind wound.HealKind) (float64, bool)
}

func (f Fallback) HealingQuantum(w wound.Wound, o wound.Outcome, kind wound.HealKind) float64 {
	if f.Primary != nil {
		if q, ok := f.Primary.Quantum(w, o, kind); ok {
			return q
		}
	}
	return f.Secondary.HealingQuantum(w, o, kind)
}
