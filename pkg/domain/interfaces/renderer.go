package interfaces

import (
	"context"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// Renderer produces an SVG for a single graph. Implementations wrap
// the external function-graph-overview scripts.
type Renderer interface {
	// RenderFunction renders the control-flow graph of the function
	// starting at position in sourceFile.
	RenderFunction(ctx context.Context, sourceFile string, position model.Position, colors string) ([]byte, error)

	// RenderGraph renders an exported graph JSON file (Ghidra path).
	RenderGraph(ctx context.Context, graphFile string, colors string) ([]byte, error)
}
