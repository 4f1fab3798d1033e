package wizard

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"voxxy/internal/location"
	"voxxy/internal/model"
)

func bushwickText() location.Selection {
	return location.Selection{
		Provenance:   location.ProvenanceCustom,
		Neighborhood: "Bushwick",
		City:         "Brooklyn",
		Formatted:    "Bushwick, Brooklyn, NY",
	}
}

func TestSchemas(t *testing.T) {
	tests := []struct {
		schema Schema
		steps  int
	}{
		{GameNight(), 1},
		{Cocktails(), 2},
		{RestaurantBar(), 3},
		{TryVoxxy(), 5},
		{ProfileLocation(), 1},
	}
	for _, tt := range tests {
		if got := tt.schema.TotalSteps(); got != tt.steps {
			t.Errorf("%s: got %d steps, want %d", tt.schema.Name, got, tt.steps)
		}
	}
}

func TestIsNextDisabledIsPure(t *testing.T) {
	s := Cocktails()
	a := newAnswers()

	if !IsNextDisabled(s, 1, a) {
		t.Fatalf("location step must be disabled without a location")
	}
	if !IsNextDisabled(s, 0, a) || !IsNextDisabled(s, 3, a) {
		t.Fatalf("out of range steps are disabled")
	}

	sel := bushwickText()
	a.location = &sel
	if IsNextDisabled(s, 1, a) {
		t.Fatalf("location step must be enabled once chosen")
	}
	if !IsNextDisabled(s, 2, a) {
		t.Fatalf("time of day step must be disabled without a choice")
	}
	a.values[FieldTimeOfDay] = "evening"
	if IsNextDisabled(s, 2, a) {
		t.Fatalf("time of day step must be enabled once chosen")
	}
}

func TestSingleSelectAutoAdvances(t *testing.T) {
	w := New(RestaurantBar(), nil)

	if advance := w.Select(FieldVenue, TypeBar); !advance {
		t.Fatalf("single select on the current step should auto-advance")
	}
	if tr := w.AutoAdvance(1); tr != TransitionAdvanced || w.Step() != 2 {
		t.Fatalf("got transition %v on step %d", tr, w.Step())
	}

	// a stale auto-advance from step 1 must not move step 2
	if tr := w.AutoAdvance(1); tr != TransitionNone || w.Step() != 2 {
		t.Fatalf("stale auto-advance moved the wizard to step %d", w.Step())
	}

	if advance := w.Select(FieldGroupSize, "3-4"); advance {
		t.Fatalf("selecting a later step's field should not auto-advance")
	}
	if w.Answers().Value(FieldGroupSize) != "3-4" {
		t.Fatalf("answer not recorded")
	}
}

func TestMultiSelectToggles(t *testing.T) {
	w := New(TryVoxxy(), nil)

	if w.Select(FieldCuisine, "Thai") {
		t.Fatalf("multi select never auto-advances")
	}
	w.Select(FieldCuisine, "Italian")
	w.Select(FieldCuisine, "Thai")

	got := w.Answers().Values(FieldCuisine)
	if len(got) != 1 || got[0] != "Italian" {
		t.Fatalf("expected toggled set [Italian], got %v", got)
	}
}

func TestNextBackAndReset(t *testing.T) {
	w := New(Cocktails(), nil)

	if tr := w.Next(); tr != TransitionNone {
		t.Fatalf("next must be ignored on an incomplete step")
	}
	if tr := w.Back(); tr != TransitionClose {
		t.Fatalf("back on step 1 closes the wizard")
	}

	w.SetLocation(bushwickText())
	id := w.RenderID()
	if tr := w.Next(); tr != TransitionAdvanced || w.Step() != 2 {
		t.Fatalf("expected step 2")
	}
	if w.RenderID() == id {
		t.Fatalf("render id must change on navigation")
	}
	w.Select(FieldTimeOfDay, "evening")
	if tr := w.Next(); tr != TransitionSubmit {
		t.Fatalf("next on the last complete step submits, got %v", tr)
	}
	if tr := w.Back(); tr != TransitionRetreated || w.Step() != 1 {
		t.Fatalf("expected step 1")
	}
	if !w.Answers().IsSet(FieldTimeOfDay) {
		t.Fatalf("answers survive going back")
	}

	w.Reset()
	if w.Step() != 1 || w.Answers().IsSet(FieldLocation) || w.Answers().IsSet(FieldTimeOfDay) {
		t.Fatalf("reset must clear everything")
	}
}

func TestPrefillSurvivesReset(t *testing.T) {
	saved := location.Selection{Provenance: location.ProvenanceProfile, City: "Brooklyn", State: "NY", Formatted: "Brooklyn, NY"}
	w := New(Cocktails(), &saved)

	if w.IsNextDisabled() {
		t.Fatalf("saved location should enable step 1")
	}
	w.ClearLocation()
	w.Reset()
	if sel, ok := w.Answers().Location(); !ok || sel.Formatted != "Brooklyn, NY" {
		t.Fatalf("reset should restore the saved location, got %+v", sel)
	}
}

func TestBuildActivityPayloadCocktails(t *testing.T) {
	w := New(Cocktails(), nil)
	w.SetLocation(bushwickText())
	w.Next()
	w.Select(FieldTimeOfDay, "evening")

	p, err := BuildActivityPayload(w.Schema(), w.Answers())
	if err != nil {
		t.Fatalf("BuildActivityPayload: %v", err)
	}
	if p.ActivityType != TypeCocktails || p.ActivityLocation != "Bushwick, Brooklyn, NY" || p.TimeOfDay != "evening" {
		t.Fatalf("unexpected payload %+v", p)
	}
	if p.DateDay != model.Unscheduled || p.DateTime != model.Unscheduled || p.Radius != DefaultRadius {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if p.Participants == nil || !p.Collecting {
		t.Fatalf("participants must be an empty list and collecting true")
	}

	// later edits must not leak into an already built payload
	w.Select(FieldTimeOfDay, "late_night")
	if p.TimeOfDay != "evening" {
		t.Fatalf("payload mutated after build")
	}
}

func TestBuildActivityPayloadCoordinates(t *testing.T) {
	lat, lng := 40.6944, -73.9213
	w := New(RestaurantBar(), nil)
	w.Select(FieldVenue, TypeRestaurant)
	w.SetLocation(location.Selection{Formatted: "Bushwick", Latitude: &lat, Longitude: &lng})
	w.Select(FieldGroupSize, "5-8")

	p, err := BuildActivityPayload(w.Schema(), w.Answers())
	if err != nil {
		t.Fatalf("BuildActivityPayload: %v", err)
	}
	if p.ActivityLocation != "40.694400, -73.921300" {
		t.Fatalf("expected coordinates, got %q", p.ActivityLocation)
	}
	if p.ActivityType != TypeRestaurant || p.ActivityName != "Restaurant Outing" || p.GroupSize != "5-8" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestBuildActivityPayloadIncomplete(t *testing.T) {
	w := New(Cocktails(), nil)
	w.SetLocation(bushwickText())

	if _, err := BuildActivityPayload(w.Schema(), w.Answers()); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if _, err := BuildActivityPayload(TryVoxxy(), w.Answers()); err == nil {
		t.Fatalf("try voxxy does not build activity payloads")
	}
}

func TestBuildTryVoxxyRequest(t *testing.T) {
	w := New(TryVoxxy(), nil)
	w.SetLocation(bushwickText())
	w.Select(FieldCuisine, "Thai")
	w.Select(FieldVibe, "Cozy")
	w.Select(FieldVibe, "Lively")
	w.Select(FieldBudget, "$$")
	w.Select(FieldGroupSize, "3-4")

	token := uuid.NewString()
	req, err := BuildTryVoxxyRequest(w.Schema(), w.Answers(), token)
	if err != nil {
		t.Fatalf("BuildTryVoxxyRequest: %v", err)
	}
	if req.Location != "Bushwick, Brooklyn, NY" || len(req.Vibes) != 2 || req.Budget != "$$" {
		t.Fatalf("unexpected request %+v", req)
	}

	if _, err := BuildTryVoxxyRequest(w.Schema(), w.Answers(), "not-a-uuid"); err == nil {
		t.Fatalf("expected a validation error for a bad session token")
	}
}
