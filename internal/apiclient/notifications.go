package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// Notification is an in-app notification addressed to the user.
type Notification struct {
	ID               int64               `json:"id"`
	Sender           *domain.Participant `json:"sender"`
	NotificationType string              `json:"notification_type"`
	Title            string              `json:"title"`
	Message          string              `json:"message"`
	IsRead           bool                `json:"is_read"`
	RelatedObjectID  *int64              `json:"related_object_id"`
	CreatedAt        *time.Time          `json:"created_at,omitempty"`
}

// NotificationsAPI wraps /auth/notifications/.
type NotificationsAPI struct{ c *Client }

// Notifications returns the notifications resource wrapper.
func (c *Client) Notifications() *NotificationsAPI { return &NotificationsAPI{c: c} }

// List returns the user's notifications.
func (a *NotificationsAPI) List(ctx context.Context) ([]Notification, error) {
	var out []Notification
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/notifications/"}, &out)
	return out, err
}

// UnreadCount returns the number of unread notifications.
func (a *NotificationsAPI) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/notifications/count/"}, &out)
	return out.Count, err
}

// MarkRead marks one notification as read.
func (a *NotificationsAPI) MarkRead(ctx context.Context, id int64) (Notification, error) {
	var out Notification
	err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: fmt.Sprintf("/auth/notifications/read/%d/", id)}, &out)
	return out, err
}

// MarkAllRead marks every notification as read and returns the backend's message.
func (a *NotificationsAPI) MarkAllRead(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: "/auth/notifications/read/"}, &out)
	return out.Message, err
}
