package body

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// Template is the static definition of a body shape, loaded from YAML.
type Template struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	BloodVolume float64          `yaml:"blood_volume"`
	NeedsBreath bool             `yaml:"needs_breath"`
	Robot       bool             `yaml:"robot"`
	Parts       []wound.Bodypart `yaml:"parts"`
}

// Validate checks the template invariants.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("template id must not be empty"))
	}
	if t.BloodVolume < 0 {
		errs = append(errs, fmt.Errorf("template %q: blood_volume must be >= 0", t.ID))
	}
	if len(t.Parts) == 0 {
		errs = append(errs, fmt.Errorf("template %q: at least one part is required", t.ID))
	}
	seen := make(map[string]bool, len(t.Parts))
	for _, p := range t.Parts {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Errorf("template %q: part id must not be empty", t.ID))
		case seen[p.ID]:
			errs = append(errs, fmt.Errorf("template %q: duplicate part %q", t.ID, p.ID))
		case p.Capacity <= 0:
			errs = append(errs, fmt.Errorf("template %q: part %q capacity must be > 0", t.ID, p.ID))
		}
		seen[p.ID] = true
	}
	return errors.Join(errs...)
}

// DefaultVariant is the wound variant fresh damage produces on this body.
func (t *Template) DefaultVariant() wound.Variant {
	if t.Robot {
		return wound.VariantRobot
	}
	return wound.VariantSimpleOrganic
}

// Registry holds all known Templates keyed by ID.
type Registry struct {
	defs map[string]*Template
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Template)}
}

// Register adds t to the registry, overwriting any existing entry with the same ID.
// Precondition: t must not be nil and t.ID must not be empty.
func (r *Registry) Register(t *Template) {
	r.defs[t.ID] = t
}

// Get returns the Template for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.defs[id]
	return t, ok
}

// IDs returns the registered template ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.defs))
	for id := range r.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Template,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading body template dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var t Template
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&t)
	}
	return reg, nil
}

// Humanoid returns the compiled-in human template.
func Humanoid() *Template {
	part := func(id, name string, capacity, bleed float64, organ bool) wound.Bodypart {
		return wound.Bodypart{
			ID: id, Name: name, Capacity: capacity,
			DamageModifier: 1, PainModifier: 1, StunModifier: 1, BleedModifier: bleed,
			Organ: organ,
		}
	}
	return &Template{
		ID:          "humanoid",
		Name:        "Humanoid",
		BloodVolume: 5,
		NeedsBreath: true,
		Parts: []wound.Bodypart{
			part("head", "head", 60, 1.5, false),
			part("torso", "torso", 100, 1, false),
			part("left_arm", "left arm", 60, 1, false),
			part("right_arm", "right arm", 60, 1, false),
			part("left_leg", "left leg", 80, 1, false),
			part("right_leg", "right leg", 80, 1, false),
			part("heart", "heart", 40, 3, true),
			part("liver", "liver", 50, 2, true),
		},
	}
}
