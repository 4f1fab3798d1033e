package wizard

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"voxxy/internal/model"
)

// DefaultRadius is the search radius, in miles, sent with every activity.
const DefaultRadius = 10

// ErrIncomplete is returned when a payload is requested before every
// required step has an answer.
var ErrIncomplete = errors.New("wizard is incomplete")

var validate = validator.New()

var venueNames = map[string]string{
	TypeRestaurant: "Restaurant Outing",
	TypeBar:        "Night Out",
}

func checkComplete(s Schema, a Answers) error {
	for i, st := range s.Steps {
		if st.Required && !a.IsSet(st.Field) {
			return fmt.Errorf("%w: step %d (%s) has no answer", ErrIncomplete, i+1, st.Field)
		}
	}
	return nil
}

// BuildActivityPayload assembles the creation payload for an activity
// wizard. The result is a fresh value; later edits to a never touch it.
func BuildActivityPayload(s Schema, a Answers) (model.ActivityCreationPayload, error) {
	if s.Kind != KindActivity {
		return model.ActivityCreationPayload{}, fmt.Errorf("wizard %q does not create activities", s.Name)
	}
	if err := checkComplete(s, a); err != nil {
		return model.ActivityCreationPayload{}, err
	}

	activityType := s.ActivityType
	name := s.ActivityName
	if venue := a.Value(FieldVenue); venue != "" {
		activityType = venue
		name = venueNames[venue]
	}

	p := model.ActivityCreationPayload{
		ActivityType: activityType,
		ActivityName: name,
		Radius:       DefaultRadius,
		DateDay:      model.Unscheduled,
		DateTime:     model.Unscheduled,
		GroupSize:    a.Value(FieldGroupSize),
		TimeOfDay:    a.Value(FieldTimeOfDay),
		Collecting:   true,
		Participants: []string{},
	}
	if sel, ok := a.Location(); ok {
		p.ActivityLocation = sel.PayloadLocation()
	}

	if err := validate.Struct(p); err != nil {
		return model.ActivityCreationPayload{}, fmt.Errorf("invalid activity payload: %w", err)
	}
	return p, nil
}

// BuildTryVoxxyRequest assembles the anonymous recommendation request.
func BuildTryVoxxyRequest(s Schema, a Answers, sessionToken string) (model.TryVoxxyRequest, error) {
	if s.Kind != KindTryVoxxy {
		return model.TryVoxxyRequest{}, fmt.Errorf("wizard %q does not request recommendations", s.Name)
	}
	if err := checkComplete(s, a); err != nil {
		return model.TryVoxxyRequest{}, err
	}

	sel, _ := a.Location()
	req := model.TryVoxxyRequest{
		SessionToken: sessionToken,
		ActivityType: s.ActivityType,
		Location:     sel.PayloadLocation(),
		Cuisines:     a.Values(FieldCuisine),
		Vibes:        a.Values(FieldVibe),
		Budget:       a.Value(FieldBudget),
		GroupSize:    a.Value(FieldGroupSize),
	}
	if err := validate.Struct(req); err != nil {
		return model.TryVoxxyRequest{}, fmt.Errorf("invalid recommendation request: %w", err)
	}
	return req, nil
}
