package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhle/adchat/internal/model"
)

// NotificationsResponse is the snapshot returned by the notifications
// endpoint: the unread count plus the ordered notification list.
type NotificationsResponse struct {
	UnreadCount   int                  `json:"unread_count"`
	Notifications []model.Notification `json:"notifications"`
}

// GetNotifications fetches the current notification snapshot. The
// returned list replaces any previously held copy wholesale; the client
// never mutates notifications locally.
func (c *Client) GetNotifications(
	ctx context.Context,
) (*NotificationsResponse, error) {
	var resp NotificationsResponse
	if err := c.Get(ctx, "/api/notifications", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkNotificationRead asks the backend to mark a single notification
// as read. Callers re-fetch the snapshot afterwards.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/notifications/%d/read", id)
	return c.Post(ctx, path, nil, nil)
}

// MarkAllNotificationsRead asks the backend to mark every notification
// as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.Post(ctx, "/api/notifications/mark-all-read", nil, nil)
}

// LoadMoreResponse is a page of items from the load-more endpoint.
// Items are decoded lazily since the shape depends on the target.
type LoadMoreResponse struct {
	Items   []json.RawMessage `json:"items"`
	HasMore bool              `json:"hasMore"`
}

// LoadMore fetches one page of paginated content for the given target
// ("programs" or "news").
func (c *Client) LoadMore(
	ctx context.Context,
	target string,
	page int,
) (*LoadMoreResponse, error) {
	path := fmt.Sprintf("/api/load-more/%s?page=%d", target, page)
	var resp LoadMoreResponse
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
