package interfaces

import (
	"context"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// Publisher posts a caption with attached images to one social
// platform.
type Publisher interface {
	// Name identifies the platform in logs and error values.
	Name() string

	// Publish uploads the images and creates the post. It must not
	// retry; the caller decides how platform failures combine.
	Publish(ctx context.Context, post model.Post, images []model.Image) error
}
