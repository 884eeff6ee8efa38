package wound

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/mudhealth/internal/game/dice"
)

// DamageProfile is the per-damage-type behaviour table.
type DamageProfile struct {
	// Bleeds reports whether the type can cause external bleeding at all.
	Bleeds bool
	// BleedOnset is the lowest severity at which a fresh wound bleeds.
	BleedOnset Severity
	// InfectionMultiplier scales the infection chance. Zero excludes the
	// type from infection entirely.
	InfectionMultiplier float64
	// TraumaEscalation is the extra difficulty stages for trauma control.
	TraumaEscalation int
	Noun             string
	RobotNoun        string
}

// StageDef is one fracture repair stage.
type StageDef struct {
	// BaseLength is the stage length in healing-minutes.
	BaseLength float64
	// PainCeiling is the pain cap as a fraction of original damage times the
	// bodypart pain modifier.
	PainCeiling float64
}

// Tables is the immutable configuration value shared by every wound in a
// running engine. Build it with DefaultTables or LoadTables and do not
// mutate it afterwards.
type Tables struct {
	// TickInterval is the real time represented by one healing tick.
	TickInterval time.Duration

	DamageTypes map[DamageType]DamageProfile
	Stages      [StageOssification + 1]StageDef

	// Tend multipliers indexed by Outcome. The organic and recovery tables
	// are deliberately separate.
	OrganicTend  [MajorPass + 1]float64
	RecoveryTend [MajorPass + 1]float64
	// StageFactor is the stage progress per passing tick in tick-minutes,
	// indexed by Outcome.
	StageFactor [MajorPass + 1]float64

	SleepMultiplier      float64
	HungerPenalty        float64
	ThirstPenalty        float64
	ReinforcedMultiplier float64
	// NaturalClosure is the severity at or below which a trauma-controlled
	// wound closes on its own while healing.
	NaturalClosure Severity

	BleedPercentPerSeverity float64
	BleedSeverityOffset     int
	BoundMultiplier         float64
	BloodVolumeFloor        float64
	ReopenThreshold         Exertion
	ReopenOffset            int

	InfectionBaseChance     float64
	InfectionSeverity       [SeverityHorrifying + 1]float64
	OrganicInfectionFloor   Severity
	FractureInfectionFloor  Severity
	FractureInfectionStages Stage
	UntreatedMultiplier     float64
	CleanSuppression        float64
	AttemptSuppression      float64
	HealedFraction          float64

	AntisepticDuration [MajorPass + 1]time.Duration
	MishapDamage       string
	MishapPain         float64
	GlanceThreshold    Severity
}

// DefaultTables returns the compiled-in tables.
func DefaultTables() *Tables {
	t := &Tables{
		TickInterval: time.Minute,
		DamageTypes: map[DamageType]DamageProfile{
			DamageSlashing:   {Bleeds: true, BleedOnset: SeverityModerate, InfectionMultiplier: 1.0, TraumaEscalation: 3, Noun: "cut", RobotNoun: "gouge"},
			DamageChopping:   {Bleeds: true, BleedOnset: SeverityModerate, InfectionMultiplier: 1.0, TraumaEscalation: 1, Noun: "hack", RobotNoun: "cleft"},
			DamageClaw:       {Bleeds: true, BleedOnset: SeverityModerate, InfectionMultiplier: 1.5, TraumaEscalation: 1, Noun: "claw wound", RobotNoun: "scoring"},
			DamageBallistic:  {Bleeds: true, BleedOnset: SeverityModerate, InfectionMultiplier: 1.25, TraumaEscalation: 2, Noun: "gunshot wound", RobotNoun: "bullet hole"},
			DamagePiercing:   {Bleeds: true, BleedOnset: SeveritySevere, InfectionMultiplier: 1.25, Noun: "puncture", RobotNoun: "puncture"},
			DamageBite:       {Bleeds: true, BleedOnset: SeveritySevere, InfectionMultiplier: 2.0, TraumaEscalation: 2, Noun: "bite", RobotNoun: "crimp"},
			DamageShearing:   {Bleeds: true, BleedOnset: SeverityModerate, InfectionMultiplier: 1.0, TraumaEscalation: 3, Noun: "shear", RobotNoun: "shear"},
			DamageWrenching:  {Bleeds: true, BleedOnset: SeverityHorrifying, InfectionMultiplier: 0.5, Noun: "wrench", RobotNoun: "buckle"},
			DamageCrushing:   {Bleeds: true, BleedOnset: SeverityGrievous, Noun: "bruise", RobotNoun: "dent"},
			DamageFalling:    {Bleeds: true, BleedOnset: SeverityGrievous, InfectionMultiplier: 0.5, Noun: "impact wound", RobotNoun: "dent"},
			DamageBurning:    {InfectionMultiplier: 1.5, Noun: "burn", RobotNoun: "scorch"},
			DamageFreezing:   {InfectionMultiplier: 0.75, Noun: "frostbite", RobotNoun: "frost crack"},
			DamageChemical:   {InfectionMultiplier: 1.0, Noun: "chemical burn", RobotNoun: "corrosion"},
			DamageShockwave:  {Noun: "concussion", RobotNoun: "fracture"},
			DamageElectrical: {Noun: "electrical burn", RobotNoun: "short"},
			DamageHypoxia:    {Noun: "hypoxic injury", RobotNoun: "seizure"},
			DamageCellular:   {Noun: "cellular damage", RobotNoun: "corruption"},
		},
		Stages: [StageOssification + 1]StageDef{
			StageTrauma:       {BaseLength: 60, PainCeiling: 1.0},
			StageReaction:     {BaseLength: 720, PainCeiling: 0.8},
			StageRelocation:   {BaseLength: 1440, PainCeiling: 0.6},
			StageReparation:   {BaseLength: 4000, PainCeiling: 0.3},
			StageOssification: {BaseLength: 5000, PainCeiling: 0.1},
		},
		SleepMultiplier:      1.5,
		HungerPenalty:        0.45,
		ThirstPenalty:        0.45,
		ReinforcedMultiplier: 1.25,
		NaturalClosure:       SeveritySmall,

		BleedPercentPerSeverity: 0.0025,
		BleedSeverityOffset:     4,
		BoundMultiplier:         0.5,
		BloodVolumeFloor:        0.25,
		ReopenThreshold:         ExertionHeavy,
		ReopenOffset:            6,

		InfectionBaseChance: 0.0005,
		InfectionSeverity: [SeverityHorrifying + 1]float64{
			0, 0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 2.5, 3.0,
		},
		OrganicInfectionFloor:   SeveritySmall,
		FractureInfectionFloor:  SeveritySevere,
		FractureInfectionStages: StageReaction,
		UntreatedMultiplier:     2.0,
		CleanSuppression:        0.95,
		AttemptSuppression:      0.75,
		HealedFraction:          0.5,

		MishapDamage:    "1d4",
		MishapPain:      2.0,
		GlanceThreshold: SeverityModerate,
	}
	t.OrganicTend = [MajorPass + 1]float64{
		OutcomeNone: 1.0, MajorFail: 0.8, Fail: 0.9, MinorFail: 1.0,
		MinorPass: 1.25, Pass: 1.5, MajorPass: 2.0,
	}
	t.RecoveryTend = [MajorPass + 1]float64{
		OutcomeNone: 1.0, MajorFail: 1.0, Fail: 1.0, MinorFail: 1.0,
		MinorPass: 1.1, Pass: 1.3, MajorPass: 1.6,
	}
	t.StageFactor = [MajorPass + 1]float64{
		MinorPass: 0.5, Pass: 1.0, MajorPass: 1.5,
	}
	t.AntisepticDuration = [MajorPass + 1]time.Duration{
		MinorPass: time.Hour, Pass: 4 * time.Hour, MajorPass: 12 * time.Hour,
	}
	return t
}

// Profile returns the profile for dt. Unknown types neither bleed nor infect.
func (t *Tables) Profile(dt DamageType) DamageProfile {
	if p, ok := t.DamageTypes[dt]; ok {
		return p
	}
	return DamageProfile{Noun: "wound", RobotNoun: "damage"}
}

// TickMinutes returns TickInterval in minutes.
func (t *Tables) TickMinutes() float64 {
	return t.TickInterval.Minutes()
}

// Validate checks the table invariants.
//
// Postcondition: Returns nil if the tables are usable, or an error describing
// every violation.
func (t *Tables) Validate() error {
	var errs []string
	if t.TickInterval <= 0 {
		errs = append(errs, "tick_interval must be > 0")
	}
	for s, def := range t.Stages {
		if def.BaseLength <= 0 {
			errs = append(errs, fmt.Sprintf("stage %s base_length must be > 0", Stage(s)))
		}
		if def.PainCeiling < 0 {
			errs = append(errs, fmt.Sprintf("stage %s pain_ceiling must be >= 0", Stage(s)))
		}
	}
	if t.BloodVolumeFloor < 0 || t.BloodVolumeFloor > 1 {
		errs = append(errs, "bleed.volume_floor must be in [0, 1]")
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"infection.clean_suppression", t.CleanSuppression},
		{"infection.attempt_suppression", t.AttemptSuppression},
		{"infection.healed_fraction", t.HealedFraction},
	} {
		if p.v < 0 || p.v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %v", p.name, p.v))
		}
	}
	if e, err := dice.Parse(t.MishapDamage); err != nil {
		errs = append(errs, fmt.Sprintf("treatment.mishap_damage: %v", err))
	} else if e.Min() < 0 {
		errs = append(errs, fmt.Sprintf("treatment.mishap_damage %s can roll below zero", e))
	}
	if len(errs) > 0 {
		return fmt.Errorf("wound tables invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// tablesFile is the YAML shape of a tables override file. Every field is
// optional; omitted fields keep their default.
type tablesFile struct {
	TickInterval string                        `yaml:"tick_interval"`
	DamageTypes  map[string]damageProfileEntry `yaml:"damage_types"`
	Stages       map[string]stageEntry         `yaml:"stages"`
	OrganicTend  map[string]float64            `yaml:"organic_tend"`
	RecoveryTend map[string]float64            `yaml:"recovery_tend"`
	StageFactor  map[string]float64            `yaml:"stage_factor"`
	Healing      *struct {
		SleepMultiplier      *float64 `yaml:"sleep_multiplier"`
		HungerPenalty        *float64 `yaml:"hunger_penalty"`
		ThirstPenalty        *float64 `yaml:"thirst_penalty"`
		ReinforcedMultiplier *float64 `yaml:"reinforced_multiplier"`
		NaturalClosure       string   `yaml:"natural_closure"`
	} `yaml:"healing"`
	Bleed *struct {
		PercentPerSeverity *float64 `yaml:"percent_per_severity"`
		SeverityOffset     *int     `yaml:"severity_offset"`
		BoundMultiplier    *float64 `yaml:"bound_multiplier"`
		VolumeFloor        *float64 `yaml:"volume_floor"`
		ReopenOffset       *int     `yaml:"reopen_offset"`
	} `yaml:"bleed"`
	Infection *struct {
		BaseChance          *float64  `yaml:"base_chance"`
		SeverityMultipliers []float64 `yaml:"severity_multipliers"`
		OrganicFloor        string    `yaml:"organic_floor"`
		FractureFloor       string    `yaml:"fracture_floor"`
		UntreatedMultiplier *float64  `yaml:"untreated_multiplier"`
		CleanSuppression    *float64  `yaml:"clean_suppression"`
		AttemptSuppression  *float64  `yaml:"attempt_suppression"`
		HealedFraction      *float64  `yaml:"healed_fraction"`
	} `yaml:"infection"`
	Treatment *struct {
		MishapDamage string   `yaml:"mishap_damage"`
		MishapPain   *float64 `yaml:"mishap_pain"`
	} `yaml:"treatment"`
	GlanceThreshold string `yaml:"glance_threshold"`
}

type damageProfileEntry struct {
	Bleeds              *bool    `yaml:"bleeds"`
	BleedOnset          string   `yaml:"bleed_onset"`
	InfectionMultiplier *float64 `yaml:"infection_multiplier"`
	TraumaEscalation    *int     `yaml:"trauma_escalation"`
	Noun                string   `yaml:"noun"`
	RobotNoun           string   `yaml:"robot_noun"`
}

type stageEntry struct {
	BaseLength  *float64 `yaml:"base_length"`
	PainCeiling *float64 `yaml:"pain_ceiling"`
}

// ParseSeverity maps a display name back to a Severity.
func ParseSeverity(s string) (Severity, error) {
	for i, n := range severityNames {
		if n == s {
			return Severity(i), nil
		}
	}
	return SeverityNone, fmt.Errorf("unknown severity %q", s)
}

// ParseStage maps a display name back to a Stage.
func ParseStage(s string) (Stage, error) {
	for st := StageTrauma; st <= StageOssification; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return StageTrauma, fmt.Errorf("unknown stage %q", s)
}

// LoadTables reads a YAML override file and applies it over DefaultTables.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns validated Tables or a non-nil error.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wound tables %q: %w", path, err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return t, nil
}

// ParseTables decodes YAML override data over DefaultTables.
func ParseTables(data []byte) (*Tables, error) {
	var f tablesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	t := DefaultTables()
	if err := f.apply(t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (f *tablesFile) apply(t *Tables) error {
	var errs []error
	sev := func(name, v string, dst *Severity) {
		if v == "" {
			return
		}
		s, err := ParseSeverity(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = s
	}
	setF := func(src *float64, dst *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setI := func(src *int, dst *int) {
		if src != nil {
			*dst = *src
		}
	}
	byOutcome := func(name string, src map[string]float64, dst *[MajorPass + 1]float64) {
		for k, v := range src {
			o, err := ParseOutcome(k)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			dst[o] = v
		}
	}

	if f.TickInterval != "" {
		d, err := time.ParseDuration(f.TickInterval)
		if err != nil {
			errs = append(errs, fmt.Errorf("tick_interval: %w", err))
		} else {
			t.TickInterval = d
		}
	}
	for name, e := range f.DamageTypes {
		dt := DamageType(name)
		p := t.Profile(dt)
		if e.Bleeds != nil {
			p.Bleeds = *e.Bleeds
		}
		sev("damage_types."+name+".bleed_onset", e.BleedOnset, &p.BleedOnset)
		setF(e.InfectionMultiplier, &p.InfectionMultiplier)
		setI(e.TraumaEscalation, &p.TraumaEscalation)
		if e.Noun != "" {
			p.Noun = e.Noun
		}
		if e.RobotNoun != "" {
			p.RobotNoun = e.RobotNoun
		}
		t.DamageTypes[dt] = p
	}
	for name, e := range f.Stages {
		st, err := ParseStage(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("stages: %w", err))
			continue
		}
		setF(e.BaseLength, &t.Stages[st].BaseLength)
		setF(e.PainCeiling, &t.Stages[st].PainCeiling)
	}
	byOutcome("organic_tend", f.OrganicTend, &t.OrganicTend)
	byOutcome("recovery_tend", f.RecoveryTend, &t.RecoveryTend)
	byOutcome("stage_factor", f.StageFactor, &t.StageFactor)
	if h := f.Healing; h != nil {
		setF(h.SleepMultiplier, &t.SleepMultiplier)
		setF(h.HungerPenalty, &t.HungerPenalty)
		setF(h.ThirstPenalty, &t.ThirstPenalty)
		setF(h.ReinforcedMultiplier, &t.ReinforcedMultiplier)
		sev("healing.natural_closure", h.NaturalClosure, &t.NaturalClosure)
	}
	if b := f.Bleed; b != nil {
		setF(b.PercentPerSeverity, &t.BleedPercentPerSeverity)
		setI(b.SeverityOffset, &t.BleedSeverityOffset)
		setF(b.BoundMultiplier, &t.BoundMultiplier)
		setF(b.VolumeFloor, &t.BloodVolumeFloor)
		setI(b.ReopenOffset, &t.ReopenOffset)
	}
	if i := f.Infection; i != nil {
		setF(i.BaseChance, &t.InfectionBaseChance)
		if len(i.SeverityMultipliers) > 0 {
			if len(i.SeverityMultipliers) != len(t.InfectionSeverity) {
				errs = append(errs, fmt.Errorf("infection.severity_multipliers must have %d entries, got %d",
					len(t.InfectionSeverity), len(i.SeverityMultipliers)))
			} else {
				copy(t.InfectionSeverity[:], i.SeverityMultipliers)
			}
		}
		sev("infection.organic_floor", i.OrganicFloor, &t.OrganicInfectionFloor)
		sev("infection.fracture_floor", i.FractureFloor, &t.FractureInfectionFloor)
		setF(i.UntreatedMultiplier, &t.UntreatedMultiplier)
		setF(i.CleanSuppression, &t.CleanSuppression)
		setF(i.AttemptSuppression, &t.AttemptSuppression)
		setF(i.HealedFraction, &t.HealedFraction)
	}
	if tr := f.Treatment; tr != nil {
		if tr.MishapDamage != "" {
			t.MishapDamage = tr.MishapDamage
		}
		setF(tr.MishapPain, &t.MishapPain)
	}
	sev("glance_threshold", f.GlanceThreshold, &t.GlanceThreshold)
	return errors.Join(errs...)
}
