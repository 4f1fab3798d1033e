package api

import (
	"context"
	"net/http"
	"net/url"

	"voxxy/internal/model"
)

type recommendationsResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// TryVoxxyRecommendations requests anonymous recommendations for a session.
func (c *Client) TryVoxxyRecommendations(ctx context.Context, req model.TryVoxxyRequest) ([]model.Recommendation, error) {
	var result recommendationsResponse
	if err := c.do(ctx, http.MethodPost, "/try_voxxy_recommendations", nil, req, &result); err != nil {
		return nil, err
	}
	return result.Recommendations, nil
}

// TryVoxxyCached returns the recommendations the backend kept for a session, if any.
func (c *Client) TryVoxxyCached(ctx context.Context, sessionToken string) ([]model.Recommendation, error) {
	params := url.Values{}
	params.Set("session_token", sessionToken)

	var result recommendationsResponse
	if err := c.do(ctx, http.MethodGet, "/try_voxxy_cached", params, nil, &result); err != nil {
		return nil, err
	}
	return result.Recommendations, nil
}
