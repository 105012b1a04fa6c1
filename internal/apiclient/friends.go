package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// FriendRequest is a pending, accepted or rejected friendship request.
type FriendRequest struct {
	ID        int64      `json:"id"`
	Sender    User       `json:"sender"`
	Receiver  User       `json:"receiver"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// FriendRequests splits the user's requests by direction.
type FriendRequests struct {
	Sent     []FriendRequest `json:"sent"`
	Received []FriendRequest `json:"received"`
}

// FriendsAPI wraps /auth/friends/.
type FriendsAPI struct{ c *Client }

// Friends returns the friends resource wrapper.
func (c *Client) Friends() *FriendsAPI { return &FriendsAPI{c: c} }

// List returns the user's friends.
func (a *FriendsAPI) List(ctx context.Context) ([]User, error) {
	var out []User
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/friends/"}, &out)
	return out, err
}

// Requests returns sent and received friend requests.
func (a *FriendsAPI) Requests(ctx context.Context) (FriendRequests, error) {
	var out FriendRequests
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/friends/requests/"}, &out)
	return out, err
}

// SendRequest asks receiverID to become a friend.
func (a *FriendsAPI) SendRequest(ctx context.Context, receiverID int64) (FriendRequest, error) {
	if receiverID <= 0 {
		return FriendRequest{}, fmt.Errorf("%w: receiver_id is required", domain.ErrValidation)
	}
	var out FriendRequest
	err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/friends/request/",
		Body:   map[string]int64{"receiver_id": receiverID},
	}, &out)
	return out, err
}

// Respond accepts or rejects a received request.
func (a *FriendsAPI) Respond(ctx context.Context, requestID int64, action string) (FriendRequest, error) {
	if action != "accept" && action != "reject" {
		return FriendRequest{}, fmt.Errorf("%w: action must be accept or reject", domain.ErrValidation)
	}
	var out FriendRequest
	err := a.c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/auth/friends/request/%d/", requestID),
		Body:   map[string]string{"action": action},
	}, &out)
	return out, err
}

// Search finds users by name or email.
func (a *FriendsAPI) Search(ctx context.Context, query string) ([]User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrValidation)
	}
	var out []User
	err := a.c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/auth/friends/search/",
		Query:  url.Values{"search": {query}},
	}, &out)
	return out, err
}

// Remove ends a friendship.
func (a *FriendsAPI) Remove(ctx context.Context, friendID int64) error {
	return a.c.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("/auth/friends/%d/", friendID)}, nil)
}
