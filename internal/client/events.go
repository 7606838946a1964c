package client

import (
	"context"
	"fmt"
	"net/url"

	"eventfeed/pkg/models"
)

// GetEvents fetches the full current event list. Order is whatever the
// backend delivers.
func (c *EventFeedClient) GetEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.get(ctx, "get events", "/events", &events); err != nil {
		return nil, err
	}

	// "null" decodes into a nil slice without error.
	if events == nil {
		return nil, fmt.Errorf("get events: %w: expected a JSON array", ErrDecode)
	}
	return events, nil
}

// FetchEvents lets the client drive a feed.
func (c *EventFeedClient) FetchEvents(ctx context.Context) ([]models.Event, error) {
	return c.GetEvents(ctx)
}

// GetEvent fetches a single event by its identifier.
func (c *EventFeedClient) GetEvent(ctx context.Context, id string) (models.Event, error) {
	var event models.Event
	err := c.get(ctx, "get event "+id, "/events/"+url.PathEscape(id), &event)
	return event, err
}
