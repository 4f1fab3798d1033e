package wizard

import (
	"github.com/samber/lo"

	"voxxy/internal/location"
)

// Transition tells the caller what a navigation call did.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionAdvanced
	TransitionRetreated
	TransitionSubmit
	TransitionClose
)

// Answers holds everything the user picked so far.
type Answers struct {
	location *location.Selection
	values   map[Field]string
	sets     map[Field][]string
}

func newAnswers() Answers {
	return Answers{
		values: map[Field]string{},
		sets:   map[Field][]string{},
	}
}

func (a Answers) clone() Answers {
	c := newAnswers()
	if a.location != nil {
		sel := *a.location
		c.location = &sel
	}
	for k, v := range a.values {
		c.values[k] = v
	}
	for k, v := range a.sets {
		c.sets[k] = append([]string(nil), v...)
	}
	return c
}

// Location returns the chosen location, if any.
func (a Answers) Location() (location.Selection, bool) {
	if a.location == nil {
		return location.Selection{}, false
	}
	return *a.location, true
}

// Value returns a single-select answer.
func (a Answers) Value(f Field) string {
	return a.values[f]
}

// Values returns a multi-select answer in selection order.
func (a Answers) Values(f Field) []string {
	return append([]string(nil), a.sets[f]...)
}

// IsSet reports whether f has a non-empty answer.
func (a Answers) IsSet(f Field) bool {
	if f == FieldLocation {
		return a.location != nil && !a.location.IsZero()
	}
	if a.values[f] != "" {
		return true
	}
	return len(a.sets[f]) > 0
}

// IsNextDisabled reports whether step (1-indexed) is missing a required answer.
// It depends on nothing but its arguments.
func IsNextDisabled(s Schema, step int, a Answers) bool {
	if step < 1 || step > len(s.Steps) {
		return true
	}
	st := s.Steps[step-1]
	return st.Required && !a.IsSet(st.Field)
}

// Wizard drives one multi-step activity form.
type Wizard struct {
	schema   Schema
	step     int
	answers  Answers
	prefill  *location.Selection
	renderID int
}

// New creates a wizard on step 1. prefill, when non-nil, seeds the location
// answer (the user's saved location).
func New(s Schema, prefill *location.Selection) *Wizard {
	w := &Wizard{schema: s}
	if prefill != nil {
		sel := *prefill
		w.prefill = &sel
	}
	w.Reset()
	return w
}

// Reset returns to step 1 with only the prefilled location.
func (w *Wizard) Reset() {
	w.step = 1
	w.answers = newAnswers()
	if w.prefill != nil {
		sel := *w.prefill
		w.answers.location = &sel
	}
	w.renderID++
}

// Schema returns the wizard's schema.
func (w *Wizard) Schema() Schema { return w.schema }

// Step returns the current 1-indexed step.
func (w *Wizard) Step() int { return w.step }

// TotalSteps returns the number of steps.
func (w *Wizard) TotalSteps() int { return w.schema.TotalSteps() }

// CurrentStep returns the declaration of the current step.
func (w *Wizard) CurrentStep() Step { return w.schema.Steps[w.step-1] }

// IsLastStep reports whether the next successful Next submits.
func (w *Wizard) IsLastStep() bool { return w.step == w.schema.TotalSteps() }

// Answers returns a copy of the collected answers.
func (w *Wizard) Answers() Answers { return w.answers.clone() }

// RenderID changes every time the visible step changes, so views can restart
// their step transition.
func (w *Wizard) RenderID() int { return w.renderID }

// IsNextDisabled reports whether the current step may not advance yet.
func (w *Wizard) IsNextDisabled() bool {
	return IsNextDisabled(w.schema, w.step, w.answers)
}

// Select records an option for field. Single-select fields are replaced and
// report whether the caller should auto-advance; multi-select fields toggle
// membership and never auto-advance.
func (w *Wizard) Select(f Field, value string) bool {
	st, ok := w.schema.stepFor(f)
	if !ok || value == "" {
		return false
	}

	switch st.Kind {
	case StepMulti:
		w.Toggle(f, value)
		return false
	case StepSingle:
		w.answers.values[f] = value
		return w.CurrentStep().Field == f
	default:
		return false
	}
}

// Toggle flips value's membership in a multi-select field.
func (w *Wizard) Toggle(f Field, value string) {
	if st, ok := w.schema.stepFor(f); !ok || st.Kind != StepMulti {
		return
	}
	current := w.answers.sets[f]
	if lo.Contains(current, value) {
		w.answers.sets[f] = lo.Without(current, value)
	} else {
		w.answers.sets[f] = append(current, value)
	}
}

// SetLocation records the location answer.
func (w *Wizard) SetLocation(sel location.Selection) {
	w.answers.location = &sel
}

// ClearLocation drops the location answer.
func (w *Wizard) ClearLocation() {
	w.answers.location = nil
}

// Next advances, or signals submission on the last step. It does nothing
// while the current step is incomplete.
func (w *Wizard) Next() Transition {
	if w.IsNextDisabled() {
		return TransitionNone
	}
	if w.step < w.schema.TotalSteps() {
		w.step++
		w.renderID++
		return TransitionAdvanced
	}
	return TransitionSubmit
}

// AutoAdvance runs a delayed Next scheduled from step. It is ignored when
// the user already moved elsewhere.
func (w *Wizard) AutoAdvance(fromStep int) Transition {
	if w.step != fromStep {
		return TransitionNone
	}
	return w.Next()
}

// Back retreats one step. On step 1 it reports TransitionClose instead.
func (w *Wizard) Back() Transition {
	if w.step == 1 {
		return TransitionClose
	}
	w.step--
	w.renderID++
	return TransitionRetreated
}
