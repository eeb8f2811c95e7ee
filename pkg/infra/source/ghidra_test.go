package source_test

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/tmr232/cfgbot/pkg/infra/source"
)

func TestGhidraExport(t *testing.T) {
	export := source.NewGhidraExport("/exports", "https://example.com/graphs/")

	gt.Value(t, export.GraphPath("deadbeef", "401000")).Equal(
		filepath.Join("/exports", "deadbeef", "401000.json"))
	gt.Value(t, export.GraphURL("deadbeef", "401000")).Equal(
		"https://example.com/graphs/deadbeef/401000.json")
}

func TestGhidraExport_NoMirror(t *testing.T) {
	export := source.NewGhidraExport("/exports", "")
	gt.Value(t, export.GraphURL("deadbeef", "401000")).Equal("")
}

func TestGhidraRenderURL(t *testing.T) {
	gt.Value(t, source.GhidraRenderURL("https://example.com/g.json", "light")).Equal(
		"https://tmr232.github.io/function-graph-overview/render/" +
			"?colors=light&graph=https%3A%2F%2Fexample.com%2Fg.json")
}
