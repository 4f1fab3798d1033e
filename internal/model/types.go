package model

import "time"

// Unscheduled is sent for date fields the organiser has not picked yet.
const Unscheduled = "TBD"

// User represents the signed-in account as returned by the backend.
type User struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Neighborhood string   `json:"neighborhood"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Preferences  string   `json:"preferences"`
	ProfilePic   string   `json:"profile_pic_url"`
}

// HasLocation reports whether the profile carries a usable saved location.
func (u User) HasLocation() bool {
	return u.City != "" && u.State != ""
}

// Activity represents a group activity owned by the user.
type Activity struct {
	ID               int64     `json:"id"`
	ActivityType     string    `json:"activity_type"`
	ActivityName     string    `json:"activity_name"`
	ActivityLocation string    `json:"activity_location"`
	Radius           int       `json:"radius"`
	DateDay          string    `json:"date_day"`
	DateTime         string    `json:"date_time"`
	DateNotes        string    `json:"date_notes"`
	GroupSize        string    `json:"group_size"`
	TimeOfDay        string    `json:"time_of_day"`
	Collecting       bool      `json:"collecting"`
	Finalized        bool      `json:"finalized"`
	CreatedAt        time.Time `json:"created_at"`
}

// ActivityCreationPayload is the body sent to create an activity.
// It is built once at submission time and never mutated afterwards.
type ActivityCreationPayload struct {
	ActivityType     string   `json:"activity_type" validate:"required"`
	ActivityName     string   `json:"activity_name" validate:"required,max=100"`
	ActivityLocation string   `json:"activity_location"`
	Radius           int      `json:"radius" validate:"min=0,max=50"`
	DateDay          string   `json:"date_day" validate:"required"`
	DateTime         string   `json:"date_time" validate:"required"`
	DateNotes        string   `json:"date_notes"`
	GroupSize        string   `json:"group_size,omitempty" validate:"required_without=TimeOfDay"`
	TimeOfDay        string   `json:"time_of_day,omitempty" validate:"required_without=GroupSize"`
	Collecting       bool     `json:"collecting"`
	Participants     []string `json:"participants"`
}

// BlockedUser is the display record kept for every blocked account.
type BlockedUser struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic_url"`
}

// TryVoxxyRequest is the anonymous recommendation request.
type TryVoxxyRequest struct {
	SessionToken string   `json:"session_token" validate:"required,uuid4"`
	ActivityType string   `json:"activity_type" validate:"required"`
	Location     string   `json:"location" validate:"required"`
	Cuisines     []string `json:"cuisines" validate:"min=1,dive,required"`
	Vibes        []string `json:"vibes" validate:"min=1,dive,required"`
	Budget       string   `json:"budget" validate:"required,oneof=$ $$ $$$ $$$$"`
	GroupSize    string   `json:"group_size" validate:"required"`
}

// Recommendation is a single venue suggested by the backend.
type Recommendation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	PriceRange  string `json:"price_range"`
	Reason      string `json:"reason"`
	Website     string `json:"website"`
}
