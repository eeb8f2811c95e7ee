package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
)

// renderBaseURL is the public function-graph-overview renderer. Post
// links point there so readers can explore the graph interactively.
const renderBaseURL = "https://tmr232.github.io/function-graph-overview/render/"

// ProjectURL is the GitHub page of an owner/name project.
func ProjectURL(project string) string {
	return fmt.Sprintf("https://github.com/%s", project)
}

// CodeURL links to a line in a file at a pinned ref.
func CodeURL(project, ref, filename string, line int) string {
	return fmt.Sprintf("https://github.com/%s/blob/%s/%s#L%d", project, ref, filename, line)
}

// RawURL is the raw.githubusercontent.com location of a file at a
// pinned ref.
func RawURL(project, ref, filename string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", project, ref, filename)
}

// RenderURL links the public renderer at a GitHub code location with a
// color scheme.
func RenderURL(codeURL, colors string) string {
	query := url.Values{
		"github": {codeURL},
		"colors": {colors},
	}
	return renderBaseURL + "?" + query.Encode()
}

// RemoteFetcher fetches file content from raw.githubusercontent.com.
type RemoteFetcher struct {
	client *http.Client
}

// NewRemoteFetcher creates a fetcher using the given HTTP client, or
// http.DefaultClient when nil.
func NewRemoteFetcher(client *http.Client) *RemoteFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteFetcher{client: client}
}

// FetchSource downloads the content of filename in project at ref.
func (f *RemoteFetcher) FetchSource(ctx context.Context, project, ref, filename string) ([]byte, error) {
	rawURL := RawURL(project, ref, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", rawURL))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch source file", goerr.V("url", rawURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status fetching source file",
			goerr.V("url", rawURL),
			goerr.V("status", resp.StatusCode),
		)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body", goerr.V("url", rawURL))
	}
	return data, nil
}
