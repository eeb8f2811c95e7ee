package model_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

func drawParts(t *rapid.T) []model.MessagePart {
	count := rapid.IntRange(1, 8).Draw(t, "count")
	parts := make([]model.MessagePart, 0, count)
	for i := 0; i < count; i++ {
		switch rapid.IntRange(0, 2).Draw(t, "kind") {
		case 0:
			parts = append(parts, model.TextPart(rapid.String().Draw(t, "text")))
		case 1:
			parts = append(parts, model.LinkPart(model.Link{
				Text: rapid.String().Draw(t, "linkText"),
				URL:  rapid.String().Draw(t, "linkURL"),
			}))
		default:
			links := make([]model.Link, rapid.IntRange(1, 4).Draw(t, "links"))
			for j := range links {
				links[j] = model.Link{
					Text: rapid.String().Draw(t, "listText"),
					URL:  rapid.String().Draw(t, "listURL"),
				}
			}
			parts = append(parts, model.LinkListPart(links))
		}
	}
	return parts
}

// The length accounting must agree with what actually gets rendered;
// otherwise abbreviation would over- or under-trim.
func TestBlueskyLengthMatchesRender(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := drawParts(t)

		rich := model.RenderBluesky(parts)
		if got, want := model.BlueskyLength(parts), utf8.RuneCountInString(rich.Text); got != want {
			t.Fatalf("BlueskyLength = %d, rendered length = %d", got, want)
		}

		prevEnd := 0
		for _, span := range rich.Links {
			if span.ByteStart < prevEnd || span.ByteEnd < span.ByteStart || span.ByteEnd > len(rich.Text) {
				t.Fatalf("invalid facet span %+v in text of %d bytes", span, len(rich.Text))
			}
			prevEnd = span.ByteEnd
		}
	})
}

func TestMastodonLengthMatchesRenderWithShortenedURLs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := drawParts(t)

		shortened := make([]model.MessagePart, len(parts))
		shortURL := strings.Repeat("x", 23)
		for i, part := range parts {
			switch p := part.(type) {
			case model.TextPart:
				shortened[i] = p
			case model.LinkPart:
				shortened[i] = model.LinkPart(model.Link{Text: p.Text, URL: shortURL})
			case model.LinkListPart:
				links := make([]model.Link, len(p))
				for j, link := range p {
					links[j] = model.Link{Text: link.Text, URL: shortURL}
				}
				shortened[i] = model.LinkListPart(links)
			}
		}

		got := model.MastodonLength(parts)
		want := utf8.RuneCountInString(model.RenderMastodon(shortened))
		if got != want {
			t.Fatalf("MastodonLength = %d, rendered length = %d", got, want)
		}
	})
}
