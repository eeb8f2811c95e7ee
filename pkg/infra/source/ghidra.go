package source

import (
	"net/url"
	"path/filepath"
	"strings"
)

// GhidraExport locates exported graph JSON files. The export layout is
// <root>/<sha256>/<address>.json, mirrored at a public URL base for
// post links.
type GhidraExport struct {
	root    string
	urlBase string
}

// NewGhidraExport creates an export lookup. urlBase may be empty when
// no public mirror exists; GraphURL then returns an empty string and
// the post omits the render link.
func NewGhidraExport(root, urlBase string) *GhidraExport {
	return &GhidraExport{root: root, urlBase: strings.TrimSuffix(urlBase, "/")}
}

// GraphPath is the local path of the exported graph for a function.
func (e *GhidraExport) GraphPath(sha256, address string) string {
	return filepath.Join(e.root, sha256, address+".json")
}

// GraphURL is the public URL of the exported graph, or empty when no
// mirror is configured.
func (e *GhidraExport) GraphURL(sha256, address string) string {
	if e.urlBase == "" {
		return ""
	}
	return e.urlBase + "/" + sha256 + "/" + address + ".json"
}

// GhidraRenderURL links the public renderer at an exported graph URL
// with a color scheme.
func GhidraRenderURL(graphURL, colors string) string {
	query := url.Values{
		"graph":  {graphURL},
		"colors": {colors},
	}
	return renderBaseURL + "?" + query.Encode()
}
