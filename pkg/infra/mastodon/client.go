package mastodon

import (
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
	mstdn "github.com/mattn/go-mastodon"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// Client publishes posts to a Mastodon instance.
type Client struct {
	client *mstdn.Client
}

// New creates a Mastodon publisher for the given instance.
func New(apiBaseURL, accessToken string) *Client {
	return &Client{
		client: mstdn.NewClient(&mstdn.Config{
			Server:      apiBaseURL,
			AccessToken: accessToken,
		}),
	}
}

// Name identifies the platform in logs.
func (c *Client) Name() string {
	return "mastodon"
}

// Publish uploads the images as media attachments and posts a status
// referencing them.
func (c *Client) Publish(ctx context.Context, post model.Post, images []model.Image) error {
	text, err := post.IntoMastodon()
	if err != nil {
		return goerr.Wrap(err, "failed to render mastodon post")
	}

	mediaIDs := make([]mstdn.ID, 0, len(images))
	for _, img := range images {
		attachment, err := c.client.UploadMediaFromMedia(ctx, &mstdn.Media{
			File:        bytes.NewReader(img.Data),
			Description: img.Alt,
		})
		if err != nil {
			return goerr.Wrap(err, "failed to upload media", goerr.V("alt", img.Alt))
		}
		mediaIDs = append(mediaIDs, attachment.ID)
	}

	if _, err := c.client.PostStatus(ctx, &mstdn.Toot{
		Status:   text,
		MediaIDs: mediaIDs,
	}); err != nil {
		return goerr.Wrap(err, "failed to post status")
	}
	return nil
}
