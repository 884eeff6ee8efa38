package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/cory-johannsen/mudhealth/internal/engine"
	"github.com/cory-johannsen/mudhealth/internal/game/body"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// step is one requested treatment. A zero outcome means roll for it.
type step struct {
	treatment wound.Treatment
	outcome   wound.Outcome
	rolled    bool
}

// parseSteps reads "mend,trauma:pass,tend:major pass".
func parseSteps(s string) ([]step, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []step
	for _, part := range strings.Split(s, ",") {
		name, outcome, hasOutcome := strings.Cut(strings.TrimSpace(part), ":")
		t, err := wound.ParseTreatment(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		st := step{treatment: t, rolled: !hasOutcome}
		if hasOutcome {
			if st.outcome, err = wound.ParseOutcome(strings.TrimSpace(outcome)); err != nil {
				return nil, err
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// scenario is one woundsim run.
type scenario struct {
	template string
	part     string
	variant  string
	damage   wound.Damage
	lodged   string
	steps    []step
	ticks    int
	offline  time.Duration
	rate     float64
	combat   bool
	asleep   bool
	exertion wound.Exertion
}

// woundState is the printed state of a wound.
type woundState struct {
	ID          string  `json:"id"`
	Variant     string  `json:"variant"`
	Bodypart    string  `json:"bodypart"`
	Severity    string  `json:"severity"`
	Damage      float64 `json:"damage"`
	Pain        float64 `json:"pain"`
	Stun        float64 `json:"stun"`
	Bleed       string  `json:"bleed"`
	Stage       string  `json:"stage,omitempty"`
	Progress    float64 `json:"stage_progress,omitempty"`
	Infection   string  `json:"infection,omitempty"`
	Attempts    uint32  `json:"treatment_attempts"`
	Description string  `json:"description"`
}

type treatmentLog struct {
	Treatment  string  `json:"treatment"`
	Difficulty string  `json:"difficulty"`
	Outcome    string  `json:"outcome"`
	Effect     string  `json:"effect"`
	Mishap     float64 `json:"mishap,omitempty"`
}

type report struct {
	Body       string         `json:"body"`
	Treatments []treatmentLog `json:"treatments,omitempty"`
	Ticks      int            `json:"ticks"`
	Offline    string         `json:"offline,omitempty"`
	Removed    int            `json:"removed"`
	Blood      float64        `json:"blood"`
	Pooled     float64        `json:"pooled"`
	Wounds     []woundState   `json:"wounds"`
}

type medic struct{}

func (medic) ID() string { return "woundsim" }

func snapshot(w wound.Wound) woundState {
	s := woundState{
		ID:          w.ID(),
		Variant:     w.Variant().String(),
		Bodypart:    w.Bodypart().ID,
		Severity:    w.Severity().String(),
		Damage:      w.CurrentDamage(),
		Pain:        w.CurrentPain(),
		Stun:        w.CurrentStun(),
		Bleed:       w.BleedStatus().String(),
		Attempts:    w.TreatmentAttempts(),
		Description: w.Describe(wound.ExamTriage, wound.OutcomeNone),
	}
	if f, ok := w.(*wound.FractureWound); ok {
		s.Stage = f.Stage().String()
		s.Progress = f.StageProgress()
	}
	if snap, ok := w.Infection().(wound.Snapshotter); ok {
		inf := snap.Snapshot()
		s.Infection = fmt.Sprintf("%s (%s, %.1f)", inf.Type, inf.Virulence, inf.Intensity)
	}
	return s
}

// simulate plays sc against a fresh body from f.
func simulate(f *engine.BodyFactory, sc scenario) (report, error) {
	b, err := f.New("sim", sc.template)
	if err != nil {
		return report{}, err
	}
	b.SetCombat(sc.combat)
	b.SetAsleep(sc.asleep)
	b.SetExertion(sc.exertion)

	part, ok := b.Part(sc.part)
	if !ok {
		return report{}, fmt.Errorf("%w: %q", body.ErrUnknownPart, sc.part)
	}
	d := sc.damage
	d.Bodypart = part
	if sc.lodged != "" {
		d.Lodged = body.NewObject(sc.lodged)
	}
	v := b.Template().DefaultVariant()
	if sc.variant != "" {
		if v, err = wound.ParseVariant(sc.variant); err != nil {
			return report{}, err
		}
	}
	w, err := b.Inflict(v, d)
	if err != nil {
		return report{}, err
	}

	rep := report{Body: sc.template, Ticks: sc.ticks}
	env := f.Env()
	for _, st := range sc.steps {
		diff := w.CanBeTreated(st.treatment)
		o := st.outcome
		if st.rolled {
			o = env.Checker.Check(medic{}, diff, 0)
		}
		res := w.Treat(medic{}, st.treatment, nil, o, true)
		rep.Treatments = append(rep.Treatments, treatmentLog{
			Treatment:  st.treatment.String(),
			Difficulty: res.Difficulty.String(),
			Outcome:    res.Outcome.String(),
			Effect:     res.Effect.String(),
			Mishap:     res.Mishap,
		})
	}

	for i := 0; i < sc.ticks; i++ {
		rep.Removed += b.Tick(sc.rate, 0).Removed
	}
	if sc.offline > 0 {
		rep.Offline = sc.offline.String()
		rep.Removed += b.CatchUp(sc.offline, sc.rate, 0)
	}

	rep.Blood, _ = b.Blood()
	rep.Pooled = b.Pooled()
	for _, w := range b.Wounds() {
		rep.Wounds = append(rep.Wounds, snapshot(w))
	}
	return rep, nil
}

func (r report) writeText(out io.Writer) {
	fmt.Fprintf(out, "body %s: blood %.3f, pooled %.3f\n", r.Body, r.Blood, r.Pooled)
	for _, t := range r.Treatments {
		fmt.Fprintf(out, "  %s at %s: %s, %s", t.Treatment, t.Difficulty, t.Outcome, t.Effect)
		if t.Mishap > 0 {
			fmt.Fprintf(out, " (mishap %.1f)", t.Mishap)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  %d ticks", r.Ticks)
	if r.Offline != "" {
		fmt.Fprintf(out, ", %s offline", r.Offline)
	}
	fmt.Fprintf(out, ", %d removed\n", r.Removed)
	if len(r.Wounds) == 0 {
		fmt.Fprintln(out, "  no wounds")
	}
	for _, w := range r.Wounds {
		fmt.Fprintf(out, "  %s: damage %.2f pain %.2f stun %.2f bleed %s", w.Description, w.Damage, w.Pain, w.Stun, w.Bleed)
		if w.Stage != "" {
			fmt.Fprintf(out, " stage %s %.0f", w.Stage, w.Progress)
		}
		if w.Infection != "" {
			fmt.Fprintf(out, " infection %s", w.Infection)
		}
		fmt.Fprintln(out)
	}
}

func (r report) writeJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
