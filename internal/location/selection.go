package location

import (
	"strings"

	"voxxy/internal/api"
	"voxxy/internal/util"
)

// Provenance records which source produced the active location.
type Provenance int

const (
	ProvenanceNone Provenance = iota
	ProvenanceProfile
	ProvenanceCurrent
	ProvenanceCustom
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceProfile:
		return "profile"
	case ProvenanceCurrent:
		return "current"
	case ProvenanceCustom:
		return "custom"
	default:
		return "none"
	}
}

// Selection is a resolved location in the shape every source normalizes to.
type Selection struct {
	Provenance   Provenance
	Neighborhood string
	City         string
	State        string
	Country      string
	Formatted    string
	Latitude     *float64
	Longitude    *float64
}

// HasCoordinates reports whether both coordinates are known.
func (s Selection) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// IsZero reports whether the selection holds nothing worth submitting.
func (s Selection) IsZero() bool {
	return strings.TrimSpace(s.Formatted) == "" && !s.HasCoordinates()
}

// PayloadLocation is the string sent as activity_location: coordinates with
// six decimals when known, the display string verbatim otherwise.
func (s Selection) PayloadLocation() string {
	if s.HasCoordinates() {
		return util.FormatCoordinates(*s.Latitude, *s.Longitude)
	}
	return s.Formatted
}

// Display is the text shown to the user for this selection.
func (s Selection) Display() string {
	if s.Formatted != "" {
		return s.Formatted
	}
	if s.HasCoordinates() {
		return util.FormatCoordinates(*s.Latitude, *s.Longitude)
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func floatPtr(v float64) *float64 {
	return &v
}

// Choice tracks the location step. Exactly one provenance is active; choosing
// another one drops everything derived from the previous source.
type Choice struct {
	provenance  Provenance
	selection   *Selection
	query       string
	suggestions []api.PlaceSuggestion
}

// Provenance returns the active provenance.
func (c *Choice) Provenance() Provenance {
	return c.provenance
}

// Active returns the finalized selection, if any.
func (c *Choice) Active() (Selection, bool) {
	if c.selection == nil {
		return Selection{}, false
	}
	return *c.selection, true
}

// Query returns the current search text (custom provenance only).
func (c *Choice) Query() string {
	return c.query
}

// Suggestions returns the latest autocomplete results (custom provenance only).
func (c *Choice) Suggestions() []api.PlaceSuggestion {
	return c.suggestions
}

// Reset clears every provenance.
func (c *Choice) Reset() {
	*c = Choice{}
}

// UseProfile activates the saved profile location.
func (c *Choice) UseProfile(sel Selection) {
	c.switchTo(ProvenanceProfile)
	sel.Provenance = ProvenanceProfile
	c.selection = &sel
}

// UseCurrent activates a device-derived location.
func (c *Choice) UseCurrent(sel Selection) {
	c.switchTo(ProvenanceCurrent)
	sel.Provenance = ProvenanceCurrent
	c.selection = &sel
}

// BeginSearch activates manual search without a finalized selection yet.
func (c *Choice) BeginSearch() {
	c.switchTo(ProvenanceCustom)
}

// SetQuery records the search text. Changing it invalidates a previous pick.
func (c *Choice) SetQuery(q string) {
	c.switchTo(ProvenanceCustom)
	if q != c.query {
		c.selection = nil
	}
	c.query = q
}

// SetSuggestions stores autocomplete results for the current query.
func (c *Choice) SetSuggestions(s []api.PlaceSuggestion) {
	if c.provenance != ProvenanceCustom {
		return
	}
	c.suggestions = s
}

// UseCustom finalizes a manual search pick.
func (c *Choice) UseCustom(sel Selection) {
	c.switchTo(ProvenanceCustom)
	sel.Provenance = ProvenanceCustom
	c.selection = &sel
	c.query = sel.Formatted
	c.suggestions = nil
}

func (c *Choice) switchTo(p Provenance) {
	if c.provenance == p {
		return
	}
	c.provenance = p
	c.selection = nil
	c.query = ""
	c.suggestions = nil
}
