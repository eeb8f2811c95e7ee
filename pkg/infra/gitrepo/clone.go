package gitrepo

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/m-mizutani/goerr/v2"
)

// Cloner clones repositories for the collector.
type Cloner struct{}

// New creates a Cloner.
func New() *Cloner {
	return &Cloner{}
}

// ShallowClone clones repoURL at depth 1 into dir and returns the HEAD
// commit hash, which becomes the index ref.
func (c *Cloner) ShallowClone(ctx context.Context, repoURL, dir string) (string, error) {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   repoURL,
		Depth: 1,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to clone repository", goerr.V("url", repoURL))
	}

	head, err := repo.Head()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve HEAD", goerr.V("url", repoURL))
	}

	return head.Hash().String(), nil
}
