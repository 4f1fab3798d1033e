package api

import (
	"context"
	"fmt"
	"net/http"

	"voxxy/internal/model"
)

// UserUpdate carries the profile fields a PATCH may change. Nil fields are left untouched.
type UserUpdate struct {
	Name         *string  `json:"name,omitempty"`
	Neighborhood *string  `json:"neighborhood,omitempty"`
	City         *string  `json:"city,omitempty"`
	State        *string  `json:"state,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Preferences  *string  `json:"preferences,omitempty"`
}

type updateUserRequest struct {
	User UserUpdate `json:"user"`
}

type blockedResponse struct {
	BlockedUsers []model.BlockedUser `json:"blocked_users"`
}

type blockResponse struct {
	BlockedUser *model.BlockedUser `json:"blocked_user"`
}

// CurrentUser fetches the signed-in profile.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// UpdateUser patches profile fields and returns the updated profile.
func (c *Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (model.User, error) {
	var user model.User
	path := fmt.Sprintf("/users/%d", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, updateUserRequest{User: update}, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// ListBlocked returns the full blocked-users list.
func (c *Client) ListBlocked(ctx context.Context) ([]model.BlockedUser, error) {
	var result blockedResponse
	if err := c.do(ctx, http.MethodGet, "/users/blocked", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.BlockedUsers, nil
}

// BlockUser blocks id. The backend echoes the blocked record when it has one.
func (c *Client) BlockUser(ctx context.Context, id int64) (model.BlockedUser, error) {
	var result blockResponse
	path := fmt.Sprintf("/users/%d/block", id)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &result); err != nil {
		return model.BlockedUser{}, err
	}
	if result.BlockedUser == nil {
		return model.BlockedUser{ID: id}, nil
	}
	return *result.BlockedUser, nil
}

// UnblockUser removes id from the block list.
func (c *Client) UnblockUser(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/users/%d/unblock", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
