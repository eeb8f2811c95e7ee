package bluesky

import (
	"bytes"
	"context"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
	"github.com/m-mizutani/goerr/v2"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

const (
	defaultHost     = "https://bsky.social"
	feedPostNSID    = "app.bsky.feed.post"
	createdAtLayout = "2006-01-02T15:04:05.000Z"
)

// Client publishes posts to Bluesky over the AT protocol. A fresh
// session is created per publish; runs are short-lived, so there is
// nothing to refresh.
type Client struct {
	host       string
	identifier string
	password   string
}

// Option configures a Client.
type Option func(*Client)

// WithHost overrides the PDS host (tests, self-hosted PDS).
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// New creates a Bluesky publisher authenticating with an app password.
func New(identifier, password string, opts ...Option) *Client {
	c := &Client{
		host:       defaultHost,
		identifier: identifier,
		password:   password,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the platform in logs.
func (c *Client) Name() string {
	return "bluesky"
}

// Publish uploads the images as blobs and creates a feed post with
// link facets and image embeds.
func (c *Client) Publish(ctx context.Context, post model.Post, images []model.Image) error {
	richText, err := post.IntoBluesky()
	if err != nil {
		return goerr.Wrap(err, "failed to render bluesky post")
	}

	client := &xrpc.Client{Host: c.host}

	session, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: c.identifier,
		Password:   c.password,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create bluesky session")
	}
	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Did:        session.Did,
		Handle:     session.Handle,
	}

	embedded := make([]*appbsky.EmbedImages_Image, 0, len(images))
	for _, img := range images {
		uploaded, err := comatproto.RepoUploadBlob(ctx, client, bytes.NewReader(img.Data))
		if err != nil {
			return goerr.Wrap(err, "failed to upload image blob", goerr.V("alt", img.Alt))
		}
		embedded = append(embedded, &appbsky.EmbedImages_Image{
			Alt:   img.Alt,
			Image: uploaded.Blob,
			AspectRatio: &appbsky.EmbedDefs_AspectRatio{
				Width:  int64(img.Width),
				Height: int64(img.Height),
			},
		})
	}

	record := &appbsky.FeedPost{
		LexiconTypeID: feedPostNSID,
		Text:          richText.Text,
		CreatedAt:     time.Now().UTC().Format(createdAtLayout),
		Facets:        linkFacets(richText.Links),
	}
	if len(embedded) > 0 {
		record.Embed = &appbsky.FeedPost_Embed{
			EmbedImages: &appbsky.EmbedImages{Images: embedded},
		}
	}

	_, err = comatproto.RepoCreateRecord(ctx, client, &comatproto.RepoCreateRecord_Input{
		Collection: feedPostNSID,
		Repo:       session.Did,
		Record:     &lexutil.LexiconTypeDecoder{Val: record},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create post record")
	}
	return nil
}

func linkFacets(links []model.LinkSpan) []*appbsky.RichtextFacet {
	facets := make([]*appbsky.RichtextFacet, 0, len(links))
	for _, link := range links {
		facets = append(facets, &appbsky.RichtextFacet{
			Index: &appbsky.RichtextFacet_ByteSlice{
				ByteStart: int64(link.ByteStart),
				ByteEnd:   int64(link.ByteEnd),
			},
			Features: []*appbsky.RichtextFacet_Features_Elem{
				{
					RichtextFacet_Link: &appbsky.RichtextFacet_Link{Uri: link.URL},
				},
			},
		})
	}
	return facets
}
