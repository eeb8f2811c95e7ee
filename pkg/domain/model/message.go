package model

import (
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
)

// Platform text budgets. Bluesky counts characters of the visible
// text; Mastodon counts every URL as a fixed 23 characters.
const (
	BlueskyMaxTextLen  = 300
	MastodonMaxTextLen = 500

	mastodonURLLen = 23
)

// Link is a piece of text that should be hyperlinked where the
// platform supports rich text.
type Link struct {
	Text string
	URL  string
}

// MessagePart is one element of a post template: plain text, a single
// link, or a list of links rendered as a group.
type MessagePart interface {
	messagePart()
}

type TextPart string

type LinkPart Link

type LinkListPart []Link

func (TextPart) messagePart()     {}
func (LinkPart) messagePart()     {}
func (LinkListPart) messagePart() {}

// LinkSpan marks a linked byte range inside rendered rich text.
// Offsets are byte positions, as the AT protocol facets require.
type LinkSpan struct {
	ByteStart int
	ByteEnd   int
	URL       string
}

// RichText is platform-neutral rich text: the rendered string plus the
// spans that should become link facets.
type RichText struct {
	Text  string
	Links []LinkSpan
}

func (rt *RichText) appendText(text string) {
	rt.Text += text
}

func (rt *RichText) appendLink(link Link) {
	start := len(rt.Text)
	rt.Text += link.Text
	rt.Links = append(rt.Links, LinkSpan{
		ByteStart: start,
		ByteEnd:   len(rt.Text),
		URL:       link.URL,
	})
}

// RenderBluesky renders template parts into rich text. Links show
// their text only; the URL goes into the span.
func RenderBluesky(parts []MessagePart) RichText {
	var rt RichText
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			rt.appendText(string(p))
		case LinkPart:
			rt.appendLink(Link(p))
		case LinkListPart:
			for i, link := range p {
				if i > 0 {
					rt.appendText(", ")
				}
				rt.appendLink(link)
			}
		}
	}
	return rt
}

// BlueskyLength is the character count the Bluesky budget applies to.
func BlueskyLength(parts []MessagePart) int {
	return utf8.RuneCountInString(RenderBluesky(parts).Text)
}

func renderMastodonList(links []Link) string {
	var sb strings.Builder
	sb.WriteString("\n")
	for i, link := range links {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  " + link.Text + " " + link.URL)
	}
	return sb.String()
}

// RenderMastodon renders template parts into plain text with inline
// URLs.
func RenderMastodon(parts []MessagePart) string {
	var sb strings.Builder
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			sb.WriteString(string(p))
		case LinkPart:
			sb.WriteString(p.Text + " " + p.URL)
		case LinkListPart:
			sb.WriteString(renderMastodonList(p))
		}
	}
	return sb.String()
}

// MastodonLength is the character count Mastodon applies to the
// rendered text, with every URL shortened to a fixed length.
func MastodonLength(parts []MessagePart) int {
	total := 0
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			total += utf8.RuneCountInString(string(p))
		case LinkPart:
			total += utf8.RuneCountInString(p.Text) + 1 + mastodonURLLen
		case LinkListPart:
			shortened := make([]Link, len(p))
			for i, link := range p {
				shortened[i] = Link{Text: link.Text, URL: strings.Repeat("x", mastodonURLLen)}
			}
			total += utf8.RuneCountInString(renderMastodonList(shortened))
		}
	}
	return total
}

// Post is a caption that can be rendered for each target platform.
// Rendering fails if the post cannot fit the platform budget even
// after abbreviation.
type Post interface {
	IntoBluesky() (RichText, error)
	IntoMastodon() (string, error)
}

// abbreviateFuncdef trims excess characters off a function definition
// and marks the cut with an ellipsis.
func abbreviateFuncdef(funcdef string, excess int) (string, error) {
	runes := []rune(funcdef)
	if len(runes) == 0 || excess > len(runes) {
		return "", goerr.New("post too long regardless of funcdef length",
			goerr.V("excess", excess),
		)
	}
	keep := len(runes) - excess - 3
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + "...", nil
}

// GithubPost is a caption for a function picked from a GitHub index.
type GithubPost struct {
	Project Link
	Code    Link
	Funcdef string
	SVGs    []Link
}

func (p GithubPost) template() []MessagePart {
	return []MessagePart{
		TextPart("Project: "),
		LinkPart(p.Project),
		TextPart("\n"),
		TextPart("File: "),
		LinkPart(p.Code),
		TextPart("\n\n"),
		TextPart(p.Funcdef + "\n\n"),
		TextPart("SVG: "),
		LinkListPart(p.SVGs),
	}
}

func (p GithubPost) abbreviated(excess int) (GithubPost, error) {
	funcdef, err := abbreviateFuncdef(p.Funcdef, excess)
	if err != nil {
		return GithubPost{}, err
	}
	p.Funcdef = funcdef
	return p, nil
}

func (p GithubPost) IntoBluesky() (RichText, error) {
	if excess := BlueskyLength(p.template()) - BlueskyMaxTextLen; excess > 0 {
		short, err := p.abbreviated(excess)
		if err != nil {
			return RichText{}, err
		}
		return RenderBluesky(short.template()), nil
	}
	return RenderBluesky(p.template()), nil
}

func (p GithubPost) IntoMastodon() (string, error) {
	if excess := MastodonLength(p.template()) - MastodonMaxTextLen; excess > 0 {
		short, err := p.abbreviated(excess)
		if err != nil {
			return "", err
		}
		return RenderMastodon(short.template()), nil
	}
	return RenderMastodon(p.template()), nil
}

// GhidraPost is a caption for a function picked from a Ghidra export.
// Funcdef may be empty when the binary had no signature info.
type GhidraPost struct {
	Project  string
	Version  string
	Filename string
	Address  string
	Funcdef  string
	SVGs     []Link
}

func (p GhidraPost) template() []MessagePart {
	parts := []MessagePart{
		TextPart("Project: " + p.Project + " " + p.Version),
		TextPart("\n"),
		TextPart("File: " + p.Filename),
		TextPart("\n"),
		TextPart("Address: " + p.Address),
		TextPart("\n"),
		TextPart("\n"),
	}
	if p.Funcdef != "" {
		parts = append(parts, TextPart(p.Funcdef+"\n\n"))
	}
	parts = append(parts, TextPart("SVG: "), LinkListPart(p.SVGs))
	return parts
}

func (p GhidraPost) abbreviated(excess int) (GhidraPost, error) {
	funcdef, err := abbreviateFuncdef(p.Funcdef, excess)
	if err != nil {
		return GhidraPost{}, err
	}
	p.Funcdef = funcdef
	return p, nil
}

func (p GhidraPost) IntoBluesky() (RichText, error) {
	if excess := BlueskyLength(p.template()) - BlueskyMaxTextLen; excess > 0 {
		short, err := p.abbreviated(excess)
		if err != nil {
			return RichText{}, err
		}
		return RenderBluesky(short.template()), nil
	}
	return RenderBluesky(p.template()), nil
}

func (p GhidraPost) IntoMastodon() (string, error) {
	if excess := MastodonLength(p.template()) - MastodonMaxTextLen; excess > 0 {
		short, err := p.abbreviated(excess)
		if err != nil {
			return "", err
		}
		return RenderMastodon(short.template()), nil
	}
	return RenderMastodon(p.template()), nil
}
