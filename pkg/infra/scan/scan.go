package scan

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/m-mizutani/goerr/v2"
)

// ScriptScanner runs the external scan-codebase script over a group of
// files and returns the partial index JSON it produces.
type ScriptScanner struct {
	script string
}

// New creates a scanner invoking the given script path.
func New(script string) *ScriptScanner {
	return &ScriptScanner{script: script}
}

// ScanFiles scans files (paths relative to root) and returns the
// partial index document.
func (s *ScriptScanner) ScanFiles(ctx context.Context, root, project, ref string, files []string) ([]byte, error) {
	outFile, err := os.CreateTemp("", "cfgbot-scan-*.json")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create scan output file")
	}
	outPath := outFile.Name()
	_ = outFile.Close()
	defer os.Remove(outPath)

	args := []string{s.script,
		"--root", root,
		"--project", project,
		"--ref", ref,
		"--out", outPath,
	}
	args = append(args, files...)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "bun", args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, goerr.Wrap(err, "scan script failed",
			goerr.V("project", project),
			goerr.V("files", len(files)),
			goerr.V("stderr", stderr.String()),
		)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read scan output")
	}
	return data, nil
}
