package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"voxxy/internal/api"
	"voxxy/internal/location"
	"voxxy/internal/model"
	"voxxy/internal/store"
	"voxxy/internal/util"
)

// ErrInFlight is returned when a submission is attempted while another one
// is still running. No request is sent.
var ErrInFlight = errors.New("submission already in progress")

// GenericFailure is shown when nothing more specific is known.
const GenericFailure = "Something went wrong creating your activity. Please try again."

// Creator sends an activity to the backend.
type Creator interface {
	CreateActivity(ctx context.Context, p model.ActivityCreationPayload) (model.Activity, error)
}

// Submitter creates activities behind a Gate.
type Submitter struct {
	gate    Gate
	creator Creator
	store   *store.Store
}

func NewSubmitter(creator Creator, st *store.Store) *Submitter {
	return &Submitter{creator: creator, store: st}
}

// Submitting reports whether a creation is in flight.
func (s *Submitter) Submitting() bool {
	return s.gate.Submitting()
}

// CreateActivity sends p once. On success the new activity is appended to
// the store before it is returned. Failures are never retried.
func (s *Submitter) CreateActivity(ctx context.Context, p model.ActivityCreationPayload) (model.Activity, error) {
	if !s.gate.TryAcquire() {
		log.Debug().Str("activity_type", p.ActivityType).Msg("ignoring duplicate submit")
		return model.Activity{}, ErrInFlight
	}
	defer s.gate.Release()

	activity, err := s.creator.CreateActivity(ctx, p)
	if err != nil {
		log.Error().Err(err).Str("activity_type", p.ActivityType).Msg("activity creation failed")
		return model.Activity{}, err
	}

	if s.store != nil {
		s.store.AppendActivity(activity)
	}
	log.Info().Int64("activity_id", activity.ID).Str("activity_type", activity.ActivityType).Msg("activity created")
	return activity, nil
}

// FailureMessage turns an error into alert text.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, location.ErrPermissionDenied) {
		return "Location permission is required to use your current location. You can still search for a place."
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return GenericFailure
	}
	if api.IsRateLimited(err) {
		if apiErr.RetryAfter > 0 {
			return fmt.Sprintf("You're doing that a lot. Please try again in %s.", util.FormatWait(apiErr.RetryAfter))
		}
		return "You're doing that a lot. Please wait a bit and try again."
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericFailure
}
