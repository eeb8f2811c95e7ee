package interfaces

import "context"

// SourceFetcher retrieves the content of a source file from a scanned
// project, either from a local checkout or from the forge.
type SourceFetcher interface {
	FetchSource(ctx context.Context, project, ref, filename string) ([]byte, error)
}
