package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
	"github.com/tmr232/cfgbot/pkg/domain/model"
	"github.com/tmr232/cfgbot/pkg/usecase"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100pt" height="50pt" viewBox="0 0 100 50">` +
	`<rect width="100" height="50" fill="#ffffff"/>` +
	`</svg>`

type mockFetcher struct {
	calls []string
}

func (m *mockFetcher) FetchSource(ctx context.Context, project, ref, filename string) ([]byte, error) {
	m.calls = append(m.calls, project+"@"+ref+":"+filename)
	return []byte("def f():\n    pass\n"), nil
}

type mockRenderer struct {
	functionCalls []string
	graphCalls    []string
	err           error
}

func (m *mockRenderer) RenderFunction(ctx context.Context, sourceFile string, position model.Position, colors string) ([]byte, error) {
	m.functionCalls = append(m.functionCalls, colors)
	if m.err != nil {
		return nil, m.err
	}
	return []byte(testSVG), nil
}

func (m *mockRenderer) RenderGraph(ctx context.Context, graphFile string, colors string) ([]byte, error) {
	m.graphCalls = append(m.graphCalls, graphFile+"#"+colors)
	if m.err != nil {
		return nil, m.err
	}
	return []byte(testSVG), nil
}

type mockPublisher struct {
	name   string
	err    error
	posts  []model.Post
	images [][]model.Image
}

func (m *mockPublisher) Name() string { return m.name }

func (m *mockPublisher) Publish(ctx context.Context, post model.Post, images []model.Image) error {
	m.posts = append(m.posts, post)
	m.images = append(m.images, images)
	return m.err
}

// blockingRenderer hangs until the context deadline, like a wedged
// render subprocess.
type blockingRenderer struct{}

func (blockingRenderer) RenderFunction(ctx context.Context, sourceFile string, position model.Position, colors string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingRenderer) RenderGraph(ctx context.Context, graphFile string, colors string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type mockGraphs struct {
	root    string
	urlBase string
}

func (m *mockGraphs) GraphPath(sha256, address string) string {
	return filepath.Join(m.root, sha256, address+".json")
}

func (m *mockGraphs) GraphURL(sha256, address string) string {
	if m.urlBase == "" {
		return ""
	}
	return m.urlBase + "/" + sha256 + "/" + address + ".json"
}

func writeIndex(t *testing.T, dir, name string, idx *model.Index) {
	t.Helper()
	data := gt.R1(json.Marshal(idx)).NoError(t)
	gt.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestPost_Run_Github(t *testing.T) {
	indexDir := t.TempDir()
	writeIndex(t, indexDir, "a_a.json", githubIndex("a/a", 10))

	fetcher := &mockFetcher{}
	renderer := &mockRenderer{}
	bluesky := &mockPublisher{name: "bluesky"}
	mastodon := &mockPublisher{name: "mastodon"}

	uc := usecase.NewPost(indexDir, []string{"dark", "light"}, fetcher, renderer,
		[]interfaces.Publisher{bluesky, mastodon})

	run := uc.Run(context.Background())
	gt.NoError(t, run.Err)
	gt.Value(t, run.Project).Equal("a/a")
	gt.Value(t, run.IndexType).Equal(model.IndexTypeGithub)

	gt.Array(t, fetcher.calls).Length(1)
	gt.Value(t, renderer.functionCalls).Equal([]string{"dark", "light"})

	gt.Array(t, bluesky.posts).Length(1)
	gt.Array(t, mastodon.posts).Length(1)
	gt.Array(t, bluesky.images[0]).Length(2)

	post := gt.Cast[model.GithubPost](t, bluesky.posts[0])
	gt.Value(t, post.Code.Text).Equal("f.py:1")
	gt.Array(t, post.SVGs).Length(2)
	gt.Value(t, post.SVGs[0].Text).Equal("dark")

	img := bluesky.images[0][0]
	gt.Value(t, img.Width).Equal(2000)
	gt.Value(t, img.Height).Equal(1000)
	gt.String(t, img.Alt).Contains("dark color scheme")
}

func TestPost_Run_PartialPublishFailure(t *testing.T) {
	indexDir := t.TempDir()
	writeIndex(t, indexDir, "a_a.json", githubIndex("a/a", 10))

	broken := &mockPublisher{name: "bluesky", err: errors.New("session expired")}
	working := &mockPublisher{name: "mastodon"}

	uc := usecase.NewPost(indexDir, []string{"dark"}, &mockFetcher{}, &mockRenderer{},
		[]interfaces.Publisher{broken, working})

	run := uc.Run(context.Background())
	gt.Value(t, run.Failed()).Equal(true)

	// Both platforms must still have been attempted.
	gt.Array(t, broken.posts).Length(1)
	gt.Array(t, working.posts).Length(1)
}

func TestPost_Run_RendererHonorsDeadline(t *testing.T) {
	indexDir := t.TempDir()
	writeIndex(t, indexDir, "a_a.json", githubIndex("a/a", 10))

	pub := &mockPublisher{name: "mastodon"}
	uc := usecase.NewPost(indexDir, []string{"dark"}, &mockFetcher{}, blockingRenderer{},
		[]interfaces.Publisher{pub})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan *model.PostRun, 1)
	go func() { done <- uc.Run(ctx) }()

	select {
	case run := <-done:
		gt.Value(t, run.Failed()).Equal(true)
		gt.Value(t, errors.Is(run.Err, context.DeadlineExceeded)).Equal(true)
		// Nothing gets published after the deadline.
		gt.Array(t, pub.posts).Length(0)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the deadline")
	}
}

func TestPost_Run_Ghidra(t *testing.T) {
	indexDir := t.TempDir()
	writeIndex(t, indexDir, "doom.json", ghidraIndex("doom", 9))

	renderer := &mockRenderer{}
	pub := &mockPublisher{name: "mastodon"}
	graphs := &mockGraphs{root: "/exports", urlBase: "https://example.com/graphs"}

	uc := usecase.NewPost(indexDir, []string{"dark"}, &mockFetcher{}, renderer,
		[]interfaces.Publisher{pub},
		usecase.WithGraphLocator(graphs))

	run := uc.Run(context.Background())
	gt.NoError(t, run.Err)
	gt.Value(t, run.IndexType).Equal(model.IndexTypeGhidra)

	gt.Array(t, renderer.graphCalls).Length(1)
	gt.Value(t, renderer.graphCalls[0]).Equal(filepath.Join("/exports", "ff", "401000.json") + "#dark")

	post := gt.Cast[model.GhidraPost](t, pub.posts[0])
	gt.Value(t, post.Address).Equal("401000")
	gt.Array(t, post.SVGs).Length(1)
	gt.String(t, post.SVGs[0].URL).Contains("example.com")
}

func TestPost_Run_GhidraWithoutExport(t *testing.T) {
	indexDir := t.TempDir()
	writeIndex(t, indexDir, "doom.json", ghidraIndex("doom", 9))

	uc := usecase.NewPost(indexDir, []string{"dark"}, &mockFetcher{}, &mockRenderer{},
		[]interfaces.Publisher{&mockPublisher{name: "mastodon"}})

	run := uc.Run(context.Background())
	gt.Value(t, run.Failed()).Equal(true)
}

func TestPost_Run_NoIndices(t *testing.T) {
	uc := usecase.NewPost(t.TempDir(), []string{"dark"}, &mockFetcher{}, &mockRenderer{},
		[]interfaces.Publisher{&mockPublisher{name: "mastodon"}})

	run := uc.Run(context.Background())
	gt.Value(t, run.Failed()).Equal(true)
}

func TestPost_Run_SkipsMalformedIndex(t *testing.T) {
	indexDir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(indexDir, "broken.json"), []byte("nope"), 0644))
	writeIndex(t, indexDir, "a_a.json", githubIndex("a/a", 10))

	pub := &mockPublisher{name: "mastodon"}
	uc := usecase.NewPost(indexDir, []string{"dark"}, &mockFetcher{}, &mockRenderer{},
		[]interfaces.Publisher{pub})

	run := uc.Run(context.Background())
	gt.NoError(t, run.Err)
	gt.Array(t, pub.posts).Length(1)
}

func TestPost_RenderArtifact(t *testing.T) {
	indexDir := t.TempDir()
	writeIndex(t, indexDir, "a_a.json", githubIndex("a/a", 10))

	renderer := &mockRenderer{}
	uc := usecase.NewPost(indexDir, []string{"dark", "light"}, &mockFetcher{}, renderer, nil)

	outPath := filepath.Join(t.TempDir(), "graph.svg")
	gt.NoError(t, uc.RenderArtifact(context.Background(), outPath))

	// Only the first color scheme is rendered.
	gt.Value(t, renderer.functionCalls).Equal([]string{"dark"})

	data := gt.R1(os.ReadFile(outPath)).NoError(t)
	gt.Value(t, string(data)).Equal(testSVG)
}

func TestPost_RenderArtifact_FailureKeepsPath(t *testing.T) {
	indexDir := t.TempDir()
	writeIndex(t, indexDir, "a_a.json", githubIndex("a/a", 10))

	renderer := &mockRenderer{err: errors.New("render script crashed")}
	uc := usecase.NewPost(indexDir, []string{"dark"}, &mockFetcher{}, renderer, nil)

	outPath := filepath.Join(t.TempDir(), "graph.svg")
	gt.Error(t, uc.RenderArtifact(context.Background(), outPath))

	// CI uploads the artifact with if: always(); the path must exist
	// even when rendering fails.
	info := gt.R1(os.Stat(outPath)).NoError(t)
	gt.Value(t, info.Size()).Equal(int64(0))
}
