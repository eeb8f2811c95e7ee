package usecase

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
	"github.com/tmr232/cfgbot/pkg/domain/model"
)

const (
	defaultFilesPerGroup = 50
	defaultScanWorkers   = 2
)

// CollectConfig drives the index builder.
type CollectConfig struct {
	// Projects are owner/name GitHub projects to scan.
	Projects []string
	// OutDir receives one <owner>_<name>.json index per project.
	OutDir string
	// FilesPerGroup bounds how many files one scan invocation gets.
	FilesPerGroup int
	// Workers bounds concurrent scan invocations per project.
	Workers int
	// Include restricts scanning to files matching any of these
	// doublestar patterns. Empty means every file.
	Include []string
}

// Collect builds index files by cloning projects and running the scan
// script over their files in groups.
type Collect struct {
	cfg     CollectConfig
	cloner  interfaces.RepoCloner
	scanner interfaces.Scanner
}

// NewCollect creates the index builder.
func NewCollect(cfg CollectConfig, cloner interfaces.RepoCloner, scanner interfaces.Scanner) *Collect {
	if cfg.FilesPerGroup <= 0 {
		cfg.FilesPerGroup = defaultFilesPerGroup
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultScanWorkers
	}
	return &Collect{cfg: cfg, cloner: cloner, scanner: scanner}
}

// Run indexes every configured project, skipping those that already
// have an index file.
func (uc *Collect) Run(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	if err := os.MkdirAll(uc.cfg.OutDir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", uc.cfg.OutDir))
	}

	for _, project := range uc.cfg.Projects {
		outPath := filepath.Join(uc.cfg.OutDir, strings.ReplaceAll(project, "/", "_")+".json")
		if _, err := os.Stat(outPath); err == nil {
			logger.Info("Index already exists, skipping", "project", project, "path", outPath)
			continue
		}

		logger.Info("Indexing", "project", project)
		index, err := uc.scanProject(ctx, project)
		if err != nil {
			return goerr.Wrap(err, "failed to index project", goerr.V("project", project))
		}

		data, err := json.Marshal(index)
		if err != nil {
			return goerr.Wrap(err, "failed to encode index", goerr.V("project", project))
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return goerr.Wrap(err, "failed to write index", goerr.V("path", outPath))
		}
		logger.Info("Index written", "project", project, "path", outPath)
	}
	return nil
}

func (uc *Collect) scanProject(ctx context.Context, project string) (*model.Index, error) {
	logger := ctxlog.From(ctx)

	workDir, err := os.MkdirTemp("", "cfgbot-collect-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create work directory")
	}
	defer os.RemoveAll(workDir)

	repoURL := "https://github.com/" + project
	repoDir := filepath.Join(workDir, "repo")

	logger.Info("Cloning", "url", repoURL)
	ref, err := uc.cloner.ShallowClone(ctx, repoURL, repoDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Clone complete", "url", repoURL, "ref", ref)

	files, err := ListFiles(repoDir, uc.cfg.Include)
	if err != nil {
		return nil, err
	}
	groups := Chunk(files, uc.cfg.FilesPerGroup)
	logger.Info("Scanning", "files", len(files), "groups", len(groups))

	// Failed groups are dropped, matching the scanner's best-effort
	// contract: a file the parser chokes on should not sink the whole
	// project.
	var mu sync.Mutex
	var partials []*model.Index

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.cfg.Workers)
	for _, group := range groups {
		eg.Go(func() error {
			data, err := uc.scanner.ScanFiles(egCtx, repoDir, project, ref, group)
			if err != nil {
				logger.Error("Failed scanning file group", "error", err, "files", len(group))
				return nil
			}
			partial, err := model.ParseIndex(data)
			if err != nil {
				logger.Error("Scan produced malformed index", "error", err)
				return nil
			}
			mu.Lock()
			partials = append(partials, partial)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return MergeIndices(partials)
}

// ListFiles walks root and returns slash-separated relative paths of
// regular files, optionally filtered by doublestar include patterns.
func ListFiles(root string, include []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if len(include) > 0 && !matchesAny(include, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to walk repository", goerr.V("root", root))
	}
	return files, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Chunk splits items into groups of at most size elements.
func Chunk(items []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var groups [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		groups = append(groups, items[start:end])
	}
	return groups
}

// MergeIndices concatenates the function lists of partial indices
// produced by separate scan invocations over the same project.
func MergeIndices(partials []*model.Index) (*model.Index, error) {
	if len(partials) == 0 {
		return nil, goerr.New("no partial indices to merge")
	}

	merged := *partials[0]
	if merged.Content.Type() != model.IndexTypeGithub {
		return nil, goerr.New("can only merge github indices",
			goerr.V("index_type", merged.Content.Type()),
		)
	}

	base := *merged.Content.Github
	for _, partial := range partials[1:] {
		if partial.Content.Type() != model.IndexTypeGithub {
			return nil, goerr.New("cannot merge mixed index types")
		}
		base.Functions = append(base.Functions, partial.Content.Github.Functions...)
	}
	merged.Content = model.IndexContent{Github: &base}
	return &merged, nil
}
