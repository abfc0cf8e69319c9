package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/school-dashboard/internal/model"
)

// notificationsResponse is the list payload shape.
type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

// notificationResponse is the single-item payload shape.
type notificationResponse struct {
	Notification model.Notification `json:"notification"`
}

// portalPrefix maps the signed-in role to its REST path prefix.
func portalPrefix(role model.UserRole) string {
	if role == model.RoleTeacher {
		return "/teacher"
	}
	return "/student"
}

// ListNotifications fetches the caller's persisted notifications.
func (c *Client) ListNotifications(
	ctx context.Context,
	role model.UserRole,
) ([]model.Notification, error) {
	var resp notificationsResponse
	path := portalPrefix(role) + "/notifications"
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return resp.Notifications, nil
}

// MarkNotificationRead acknowledges a notification for the caller and
// returns the server's updated representation, which has the caller's
// id appended to isReadBy.
func (c *Client) MarkNotificationRead(
	ctx context.Context,
	role model.UserRole,
	id string,
) (model.Notification, error) {
	var resp notificationResponse
	path := fmt.Sprintf(
		"%s/notifications/%s/read",
		portalPrefix(role), url.PathEscape(id),
	)
	if err := c.Patch(ctx, path, nil, &resp); err != nil {
		return model.Notification{}, fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return resp.Notification, nil
}
