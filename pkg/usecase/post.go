package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
	"github.com/tmr232/cfgbot/pkg/domain/model"
	"github.com/tmr232/cfgbot/pkg/infra/source"
	"github.com/tmr232/cfgbot/pkg/utils/imaging"
)

// Post runs the render-and-post pipeline: pick a function, fetch its
// source or graph, render one SVG per color scheme, rasterize, and
// publish to every configured platform.
type Post struct {
	indexDir   string
	colors     []string
	fetcher    interfaces.SourceFetcher
	renderer   interfaces.Renderer
	publishers []interfaces.Publisher
	graphs     interfaces.GraphLocator
	picker     *Picker
}

// PostOption configures optional dependencies of the post pipeline.
type PostOption func(*Post)

// WithGraphLocator enables the Ghidra path.
func WithGraphLocator(graphs interfaces.GraphLocator) PostOption {
	return func(p *Post) {
		p.graphs = graphs
	}
}

// WithPicker overrides the selection source (tests pin the seed).
func WithPicker(picker *Picker) PostOption {
	return func(p *Post) {
		p.picker = picker
	}
}

// NewPost creates the pipeline.
func NewPost(
	indexDir string,
	colors []string,
	fetcher interfaces.SourceFetcher,
	renderer interfaces.Renderer,
	publishers []interfaces.Publisher,
	opts ...PostOption,
) *Post {
	uc := &Post{
		indexDir:   indexDir,
		colors:     colors,
		fetcher:    fetcher,
		renderer:   renderer,
		publishers: publishers,
		picker:     NewPicker(nil),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run executes one post run. The returned record always carries the
// outcome; a failed run has Err set.
func (uc *Post) Run(ctx context.Context) *model.PostRun {
	run := &model.PostRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	logger := ctxlog.From(ctx).With("run_id", run.ID)
	ctx = ctxlog.With(ctx, logger)

	run.Err = uc.execute(ctx, run)
	run.FinishedAt = time.Now()

	if run.Failed() {
		logger.Error("Post run failed", "error", run.Err, "duration", run.Duration())
	} else {
		logger.Info("Post run complete", "project", run.Project, "duration", run.Duration())
	}
	return run
}

func (uc *Post) execute(ctx context.Context, run *model.PostRun) error {
	indices, err := uc.loadIndices(ctx)
	if err != nil {
		return err
	}

	picked, err := uc.picker.Pick(indices)
	if err != nil {
		return err
	}

	var post model.Post
	var images []model.Image
	switch {
	case picked.Github != nil:
		run.IndexType = model.IndexTypeGithub
		run.Project = picked.Index.Content.Github.Project
		post, images, err = uc.buildGithubPost(ctx, picked)
	case picked.Ghidra != nil:
		run.IndexType = model.IndexTypeGhidra
		run.Project = picked.Index.Content.Ghidra.Project
		post, images, err = uc.buildGhidraPost(ctx, picked)
	default:
		err = goerr.New("picker returned empty selection")
	}
	if err != nil {
		return err
	}

	return uc.publish(ctx, post, images)
}

// loadIndices parses every index file in the index directory. Files
// that fail to parse are logged and skipped; the run only fails when
// nothing is usable.
func (uc *Post) loadIndices(ctx context.Context) ([]*model.Index, error) {
	logger := ctxlog.From(ctx)

	paths, err := filepath.Glob(filepath.Join(uc.indexDir, "*.json"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list index files", goerr.V("dir", uc.indexDir))
	}

	var indices []*model.Index
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable index file", "path", path, "error", err)
			continue
		}
		idx, err := model.ParseIndex(data)
		if err != nil {
			logger.Warn("Skipping malformed index file", "path", path, "error", err)
			continue
		}
		indices = append(indices, idx)
	}

	if len(indices) == 0 {
		return nil, goerr.New("no usable index files", goerr.V("dir", uc.indexDir))
	}
	logger.Info("Loaded indices", "count", len(indices), "dir", uc.indexDir)
	return indices, nil
}

// prepareGithubSource fetches the selected file and writes it into a
// temporary directory; the render script wants a real file on disk.
func (uc *Post) prepareGithubSource(ctx context.Context, idx *model.GithubIndex, fn *model.GithubFunction) (string, func(), error) {
	code, err := uc.fetcher.FetchSource(ctx, idx.Project, idx.Ref, fn.Filename)
	if err != nil {
		return "", nil, err
	}

	tempDir, err := os.MkdirTemp("", "cfgbot-post-*")
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to create temporary directory")
	}
	cleanup := func() { _ = os.RemoveAll(tempDir) }

	codeFile := filepath.Join(tempDir, filepath.Base(fn.Filename))
	if err := os.WriteFile(codeFile, code, 0600); err != nil {
		cleanup()
		return "", nil, goerr.Wrap(err, "failed to write source file", goerr.V("path", codeFile))
	}
	return codeFile, cleanup, nil
}

// RenderArtifact picks a function and writes its rendered SVG to
// outPath without posting. The CI artifact-upload workflows use this.
func (uc *Post) RenderArtifact(ctx context.Context, outPath string) error {
	// Create the output file up front: CI uploads the artifact with
	// if: always(), so the path must exist even when rendering fails.
	if err := os.WriteFile(outPath, nil, 0644); err != nil {
		return goerr.Wrap(err, "failed to create artifact file", goerr.V("path", outPath))
	}

	indices, err := uc.loadIndices(ctx)
	if err != nil {
		return err
	}
	picked, err := uc.picker.Pick(indices)
	if err != nil {
		return err
	}

	colors := ""
	if len(uc.colors) > 0 {
		colors = uc.colors[0]
	}

	var svg []byte
	switch {
	case picked.Github != nil:
		idx := picked.Index.Content.Github
		codeFile, cleanup, err := uc.prepareGithubSource(ctx, idx, picked.Github)
		if err != nil {
			return err
		}
		defer cleanup()
		if svg, err = uc.renderer.RenderFunction(ctx, codeFile, picked.Github.StartPosition, colors); err != nil {
			return err
		}
	case picked.Ghidra != nil:
		if uc.graphs == nil {
			return goerr.New("ghidra export not configured")
		}
		idx := picked.Index.Content.Ghidra
		graphFile := uc.graphs.GraphPath(idx.Sha256, picked.Ghidra.Address)
		if svg, err = uc.renderer.RenderGraph(ctx, graphFile, colors); err != nil {
			return err
		}
	default:
		return goerr.New("picker returned empty selection")
	}

	if err := os.WriteFile(outPath, svg, 0644); err != nil {
		return goerr.Wrap(err, "failed to write artifact", goerr.V("path", outPath))
	}
	ctxlog.From(ctx).Info("Wrote render artifact", "path", outPath, "bytes", len(svg))
	return nil
}

func altText(colors string) string {
	return fmt.Sprintf("A control-flow-graph of the function described in the post text using a %s color scheme.", colors)
}

func (uc *Post) buildGithubPost(ctx context.Context, picked *Picked) (model.Post, []model.Image, error) {
	idx := picked.Index.Content.Github
	fn := picked.Github
	logger := ctxlog.From(ctx)

	logger.Info("Selected function",
		"project", idx.Project,
		"filename", fn.Filename,
		"row", fn.StartPosition.Row,
		"node_count", fn.NodeCount,
	)

	codeFile, cleanup, err := uc.prepareGithubSource(ctx, idx, fn)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	var images []model.Image
	for _, colors := range uc.colors {
		svg, err := uc.renderer.RenderFunction(ctx, codeFile, fn.StartPosition, colors)
		if err != nil {
			return nil, nil, err
		}
		img, err := imaging.Rasterize(svg, altText(colors))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to rasterize svg", goerr.V("colors", colors))
		}
		images = append(images, *img)
	}

	line := fn.StartPosition.Row + 1
	codeURL := source.CodeURL(idx.Project, idx.Ref, fn.Filename, line)

	svgLinks := make([]model.Link, 0, len(uc.colors))
	for _, colors := range uc.colors {
		svgLinks = append(svgLinks, model.Link{
			Text: colors,
			URL:  source.RenderURL(codeURL, colors),
		})
	}

	post := model.GithubPost{
		Project: model.Link{Text: idx.Project, URL: source.ProjectURL(idx.Project)},
		Code:    model.Link{Text: fmt.Sprintf("%s:%d", fn.Filename, line), URL: codeURL},
		Funcdef: fn.Funcdef,
		SVGs:    svgLinks,
	}
	return post, images, nil
}

func (uc *Post) buildGhidraPost(ctx context.Context, picked *Picked) (model.Post, []model.Image, error) {
	if uc.graphs == nil {
		return nil, nil, goerr.New("ghidra export not configured")
	}

	idx := picked.Index.Content.Ghidra
	fn := picked.Ghidra
	logger := ctxlog.From(ctx)

	logger.Info("Selected function",
		"project", idx.Project,
		"binary", idx.Filename,
		"address", fn.Address,
		"node_count", fn.NodeCount,
	)

	graphFile := uc.graphs.GraphPath(idx.Sha256, fn.Address)

	var images []model.Image
	for _, colors := range uc.colors {
		svg, err := uc.renderer.RenderGraph(ctx, graphFile, colors)
		if err != nil {
			return nil, nil, err
		}
		img, err := imaging.Rasterize(svg, altText(colors))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to rasterize svg", goerr.V("colors", colors))
		}
		images = append(images, *img)
	}

	var svgLinks []model.Link
	if graphURL := uc.graphs.GraphURL(idx.Sha256, fn.Address); graphURL != "" {
		for _, colors := range uc.colors {
			svgLinks = append(svgLinks, model.Link{
				Text: colors,
				URL:  source.GhidraRenderURL(graphURL, colors),
			})
		}
	}

	post := model.GhidraPost{
		Project:  idx.Project,
		Version:  idx.Version,
		Filename: idx.Filename,
		Address:  fn.Address,
		Funcdef:  fn.Name,
		SVGs:     svgLinks,
	}
	return post, images, nil
}

// publish attempts every platform; one failure does not stop the
// others, but any failure fails the run.
func (uc *Post) publish(ctx context.Context, post model.Post, images []model.Image) error {
	logger := ctxlog.From(ctx)

	var failures []error
	for _, pub := range uc.publishers {
		logger.Info("Posting", "platform", pub.Name())
		if err := pub.Publish(ctx, post, images); err != nil {
			logger.Error("Failed posting", "platform", pub.Name(), "error", err)
			failures = append(failures, goerr.Wrap(err, "publish failed", goerr.V("platform", pub.Name())))
			continue
		}
		logger.Info("Posted", "platform", pub.Name())
	}

	if len(failures) > 0 {
		return goerr.Wrap(errors.Join(failures...), "failed posting to at least one platform",
			goerr.V("failed", len(failures)),
			goerr.V("total", len(uc.publishers)),
		)
	}
	return nil
}
