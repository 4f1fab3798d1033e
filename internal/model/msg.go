package model

import "time"

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// UserLoadedMsg is sent when the signed-in profile is fetched.
type UserLoadedMsg struct {
	User User
}

// ActivitiesLoadedMsg is sent when the activity list is fetched from the backend.
type ActivitiesLoadedMsg struct {
	Activities []Activity
}

// ActivityCreatedMsg is sent once a wizard finished creating an activity
// and its success hold elapsed.
type ActivityCreatedMsg struct {
	Activity Activity
}

// ProfileLocationSavedMsg is sent when the saved location was updated.
type ProfileLocationSavedMsg struct {
	User User
}

// RecommendationsMsg is sent when the try-voxxy flow produced results.
type RecommendationsMsg struct {
	Recommendations []Recommendation
	Cached          bool
	RetryIn         time.Duration
}

// BlockedLoadedMsg is sent when the blocked-users cache is ready.
type BlockedLoadedMsg struct {
	Users []BlockedUser
}

// SignedOutMsg is sent when the backend no longer accepts the token.
type SignedOutMsg struct{}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenWizard
	ScreenBlocked
	ScreenRecommendations
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
