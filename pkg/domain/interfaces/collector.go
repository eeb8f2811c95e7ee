package interfaces

import "context"

// Scanner runs the external scan script over a group of files and
// returns the partial index document it produces.
type Scanner interface {
	ScanFiles(ctx context.Context, root, project, ref string, files []string) ([]byte, error)
}

// RepoCloner clones a repository into dir and returns the HEAD commit
// hash.
type RepoCloner interface {
	ShallowClone(ctx context.Context, repoURL, dir string) (string, error)
}

// GraphLocator resolves exported Ghidra graphs to local paths and
// public URLs.
type GraphLocator interface {
	GraphPath(sha256, address string) string
	GraphURL(sha256, address string) string
}
