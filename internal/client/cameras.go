package client

import (
	"context"
	"fmt"

	"eventfeed/pkg/models"
)

func (c *EventFeedClient) GetCameras(ctx context.Context) ([]models.Camera, error) {
	var cameras []models.Camera
	if err := c.get(ctx, "get cameras", "/cameras", &cameras); err != nil {
		return nil, err
	}
	if cameras == nil {
		return nil, fmt.Errorf("get cameras: %w: expected a JSON array", ErrDecode)
	}
	return cameras, nil
}

// AddCamera registers a camera and returns it as stored by the backend.
func (c *EventFeedClient) AddCamera(ctx context.Context, in models.CameraIn) (models.Camera, error) {
	var cam models.Camera
	if err := c.post(ctx, "add camera", "/cameras", in, &cam); err != nil {
		return models.Camera{}, err
	}
	if cam.ID.IsZero() {
		return models.Camera{}, fmt.Errorf("add camera: %w: response has no id", ErrDecode)
	}
	return cam, nil
}
