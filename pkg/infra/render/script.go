package render

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// bun runs the external function-graph-overview scripts.
const runner = "bun"

// ScriptRenderer invokes the external render scripts as subprocesses.
// The scripts write the SVG to stdout. Both script paths are optional;
// rendering through an unconfigured path is an error.
type ScriptRenderer struct {
	functionScript string
	graphScript    string
}

// New creates a renderer. functionScript renders a function from a
// source file; graphScript renders an exported graph JSON file.
func New(functionScript, graphScript string) *ScriptRenderer {
	return &ScriptRenderer{
		functionScript: functionScript,
		graphScript:    graphScript,
	}
}

// FunctionArgs builds the argv (after the runner) for a source-file
// render. Split out for testing.
func FunctionArgs(script, sourceFile string, position model.Position, colors string) ([]string, error) {
	posJSON, err := json.Marshal(position)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode position")
	}

	args := []string{"run", script}
	if colors != "" {
		args = append(args, "--colors", colors)
	}
	return append(args, sourceFile, string(posJSON)), nil
}

// GraphArgs builds the argv (after the runner) for an exported-graph
// render.
func GraphArgs(script, graphFile, colors string) []string {
	args := []string{"run", script}
	if colors != "" {
		args = append(args, "--colors", colors)
	}
	return append(args, graphFile)
}

// RenderFunction renders the control-flow graph of the function at
// position in sourceFile and returns the SVG bytes.
func (r *ScriptRenderer) RenderFunction(ctx context.Context, sourceFile string, position model.Position, colors string) ([]byte, error) {
	if r.functionScript == "" {
		return nil, goerr.New("function render script not configured")
	}
	args, err := FunctionArgs(r.functionScript, sourceFile, position, colors)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, args)
}

// RenderGraph renders an exported graph JSON file and returns the SVG
// bytes.
func (r *ScriptRenderer) RenderGraph(ctx context.Context, graphFile string, colors string) ([]byte, error) {
	if r.graphScript == "" {
		return nil, goerr.New("graph render script not configured")
	}
	return r.run(ctx, GraphArgs(r.graphScript, graphFile, colors))
}

func (r *ScriptRenderer) run(ctx context.Context, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, runner, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, goerr.Wrap(err, "render script failed",
			goerr.V("args", strings.Join(args, " ")),
			goerr.V("stderr", stderr.String()),
		)
	}
	return stdout.Bytes(), nil
}
