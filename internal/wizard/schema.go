package wizard

// Field names an answer collected by a step.
type Field string

const (
	FieldLocation  Field = "location"
	FieldVenue     Field = "venue"
	FieldGroupSize Field = "group_size"
	FieldTimeOfDay Field = "time_of_day"
	FieldCuisine   Field = "cuisine"
	FieldVibe      Field = "vibe"
	FieldBudget    Field = "budget"
)

// StepKind selects how a step collects its answer.
type StepKind int

const (
	StepLocation StepKind = iota
	StepSingle
	StepMulti
)

// Kind selects what completing a wizard does.
type Kind int

const (
	KindActivity Kind = iota
	KindTryVoxxy
	KindProfileLocation
)

// Option is one selectable answer.
type Option struct {
	Value string
	Label string
}

// Step declares what one page of a wizard asks for.
type Step struct {
	Field    Field
	Kind     StepKind
	Title    string
	Subtitle string
	Options  []Option
	Required bool
}

// Schema declares a whole wizard.
type Schema struct {
	Kind         Kind
	Name         string
	ActivityType string
	ActivityName string
	Steps        []Step
}

// TotalSteps returns the number of steps.
func (s Schema) TotalSteps() int {
	return len(s.Steps)
}

func (s Schema) stepFor(f Field) (Step, bool) {
	for _, st := range s.Steps {
		if st.Field == f {
			return st, true
		}
	}
	return Step{}, false
}

// Activity types understood by the backend.
const (
	TypeRestaurant = "Restaurant"
	TypeBar        = "Bar"
	TypeCocktails  = "Cocktails"
	TypeGameNight  = "Game Night"
)

var (
	groupSizeOptions = []Option{
		{Value: "1-2", Label: "Just me or a date (1-2)"},
		{Value: "3-4", Label: "Small group (3-4)"},
		{Value: "5-8", Label: "Medium group (5-8)"},
		{Value: "9+", Label: "Big crew (9+)"},
	}
	timeOfDayOptions = []Option{
		{Value: "afternoon", Label: "Afternoon drinks"},
		{Value: "evening", Label: "Evening cocktails"},
		{Value: "late_night", Label: "Late night"},
	}
	cuisineOptions = []Option{
		{Value: "Italian", Label: "Italian"},
		{Value: "Mexican", Label: "Mexican"},
		{Value: "Japanese", Label: "Japanese"},
		{Value: "Thai", Label: "Thai"},
		{Value: "American", Label: "American"},
		{Value: "Mediterranean", Label: "Mediterranean"},
		{Value: "Indian", Label: "Indian"},
		{Value: "Chinese", Label: "Chinese"},
	}
	vibeOptions = []Option{
		{Value: "Casual", Label: "Casual"},
		{Value: "Trendy", Label: "Trendy"},
		{Value: "Romantic", Label: "Romantic"},
		{Value: "Lively", Label: "Lively"},
		{Value: "Cozy", Label: "Cozy"},
		{Value: "Upscale", Label: "Upscale"},
	}
	budgetOptions = []Option{
		{Value: "$", Label: "$  Budget friendly"},
		{Value: "$$", Label: "$$  Moderate"},
		{Value: "$$$", Label: "$$$  Splurge"},
		{Value: "$$$$", Label: "$$$$  Special occasion"},
	}
)

func locationStep(title string) Step {
	return Step{
		Field:    FieldLocation,
		Kind:     StepLocation,
		Title:    title,
		Subtitle: "Use your saved location, where you are now, or search",
		Required: true,
	}
}

// GameNight asks only for the group size.
func GameNight() Schema {
	return Schema{
		Kind:         KindActivity,
		Name:         "Game Night",
		ActivityType: TypeGameNight,
		ActivityName: "Game Night",
		Steps: []Step{
			{Field: FieldGroupSize, Kind: StepSingle, Title: "How many players?", Options: groupSizeOptions, Required: true},
		},
	}
}

// Cocktails asks for a location and a time of day.
func Cocktails() Schema {
	return Schema{
		Kind:         KindActivity,
		Name:         "Cocktails",
		ActivityType: TypeCocktails,
		ActivityName: "Cocktail Night",
		Steps: []Step{
			locationStep("Where should we look?"),
			{Field: FieldTimeOfDay, Kind: StepSingle, Title: "When are you heading out?", Options: timeOfDayOptions, Required: true},
		},
	}
}

// RestaurantBar asks for the venue type, a location and the group size.
func RestaurantBar() Schema {
	return Schema{
		Kind: KindActivity,
		Name: "Restaurant or Bar",
		Steps: []Step{
			{Field: FieldVenue, Kind: StepSingle, Title: "What are you planning?", Options: []Option{
				{Value: TypeRestaurant, Label: "Lets Eat! (restaurant)"},
				{Value: TypeBar, Label: "Night Out (bar)"},
			}, Required: true},
			locationStep("Where should we look?"),
			{Field: FieldGroupSize, Kind: StepSingle, Title: "How big is the group?", Options: groupSizeOptions, Required: true},
		},
	}
}

// TryVoxxy is the anonymous recommendation flow.
func TryVoxxy() Schema {
	return Schema{
		Kind:         KindTryVoxxy,
		Name:         "Try Voxxy",
		ActivityType: TypeRestaurant,
		Steps: []Step{
			locationStep("Where are you eating?"),
			{Field: FieldCuisine, Kind: StepMulti, Title: "Any cuisines you're craving?", Subtitle: "Pick as many as you like", Options: cuisineOptions, Required: true},
			{Field: FieldVibe, Kind: StepMulti, Title: "What's the vibe?", Subtitle: "Pick as many as you like", Options: vibeOptions, Required: true},
			{Field: FieldBudget, Kind: StepSingle, Title: "What's the budget?", Options: budgetOptions, Required: true},
			{Field: FieldGroupSize, Kind: StepSingle, Title: "How many people?", Options: groupSizeOptions, Required: true},
		},
	}
}

// ProfileLocation updates the saved profile location.
func ProfileLocation() Schema {
	return Schema{
		Kind: KindProfileLocation,
		Name: "Saved Location",
		Steps: []Step{
			locationStep("Where are you based?"),
		},
	}
}
