package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// LocalFetcher reads source files from a local checkout of the
// project, as the CI workflows provide via CLONE_SOURCE_ROOT. The
// checkout is assumed to match the index ref; project and ref are only
// used for error context.
type LocalFetcher struct {
	root string
}

// NewLocalFetcher creates a fetcher rooted at a checkout directory.
func NewLocalFetcher(root string) *LocalFetcher {
	return &LocalFetcher{root: root}
}

// FetchSource reads the content of filename under the checkout root.
func (f *LocalFetcher) FetchSource(ctx context.Context, project, ref, filename string) ([]byte, error) {
	path := filepath.Join(f.root, filepath.FromSlash(filename))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read source file from checkout",
			goerr.V("path", path),
			goerr.V("project", project),
			goerr.V("ref", ref),
		)
	}
	return data, nil
}
