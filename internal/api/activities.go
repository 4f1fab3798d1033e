package api

import (
	"context"
	"net/http"

	"voxxy/internal/model"
)

type createActivityRequest struct {
	Activity model.ActivityCreationPayload `json:"activity"`
}

// CreateActivity posts a new activity and returns the created record.
func (c *Client) CreateActivity(ctx context.Context, payload model.ActivityCreationPayload) (model.Activity, error) {
	if payload.Participants == nil {
		payload.Participants = []string{}
	}

	var created model.Activity
	if err := c.do(ctx, http.MethodPost, "/activities", nil, createActivityRequest{Activity: payload}, &created); err != nil {
		return model.Activity{}, err
	}
	return created, nil
}

// ListActivities fetches the signed-in user's activities.
func (c *Client) ListActivities(ctx context.Context) ([]model.Activity, error) {
	var activities []model.Activity
	if err := c.do(ctx, http.MethodGet, "/activities", nil, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
