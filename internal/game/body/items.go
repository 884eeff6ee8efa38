package body

import (
	"math"

	"github.com/google/uuid"
)

// Object is a foreign object that can lodge in a wound.
type Object struct {
	id      string
	name    string
	deleted bool
}

// NewObject returns an Object with a fresh id.
func NewObject(name string) *Object {
	return &Object{id: uuid.NewString(), name: name}
}

// RestoreObject returns an Object with a known id.
func RestoreObject(id, name string) *Object {
	return &Object{id: id, name: name}
}

func (o *Object) ID() string    { return o.id }
func (o *Object) Name() string  { return o.name }
func (o *Object) Delete()       { o.deleted = true }
func (o *Object) Deleted() bool { return o.deleted }

// Dressing is a worn or bound item that soaks up leaked fluid until full.
type Dressing struct {
	name     string
	capacity float64
	held     float64
}

// NewDressing returns an empty Dressing that can hold capacity.
func NewDressing(name string, capacity float64) *Dressing {
	return &Dressing{name: name, capacity: math.Max(0, capacity)}
}

func (d *Dressing) Name() string { return d.name }

// Held returns the fluid the dressing holds.
func (d *Dressing) Held() float64 { return d.held }

// Saturated reports whether the dressing can absorb no more.
func (d *Dressing) Saturated() bool { return d.held >= d.capacity }

// Absorb implements wound.Absorber.
func (d *Dressing) Absorb(amount float64) float64 {
	got := math.Min(math.Max(0, amount), d.capacity-d.held)
	d.held += got
	return got
}

// Supply is a named consumable treatment item.
type Supply struct {
	name string
	uses int
}

// NewSupply returns a Supply good for uses treatments.
func NewSupply(name string, uses int) *Supply {
	return &Supply{name: name, uses: uses}
}

func (s *Supply) Name() string { return s.name }
func (s *Supply) Uses() int    { return s.uses }

// Consume implements wound.Consumable.
func (s *Supply) Consume() {
	if s.uses > 0 {
		s.uses--
	}
}
