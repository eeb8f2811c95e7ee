package model

import (
	"encoding/json"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// IndexVersion is the only index schema version this build understands.
const IndexVersion = 1

// IndexType discriminates the content of an index file.
type IndexType string

const (
	IndexTypeGithub IndexType = "github"
	IndexTypeGhidra IndexType = "ghidra"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]+$`)

// Position is a tree-sitter start position of a function node.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// GithubFunction is one renderable function from a scanned repository.
type GithubFunction struct {
	// Funcdef is the function definition line, used as the caption body.
	Funcdef string `json:"funcdef"`
	// NodeCount is the number of nodes in the control-flow graph.
	NodeCount int `json:"node_count"`
	// Filename is the repo-relative path of the containing file.
	Filename string `json:"filename"`
	// StartPosition locates the function node in the file.
	StartPosition Position `json:"start_position"`
}

// GithubIndex lists the functions scanned from a GitHub project at a
// pinned ref.
type GithubIndex struct {
	IndexType IndexType        `json:"index_type"`
	Project   string           `json:"project"` // owner/name
	Ref       string           `json:"ref"`
	Functions []GithubFunction `json:"functions"`
}

// GhidraFunction is one function exported from a binary.
type GhidraFunction struct {
	// Address of the function, lowercase hex. The exported graph file
	// is named after it.
	Address string `json:"address"`
	// Name is the demangled name with signature info, if known.
	Name string `json:"name,omitempty"`
	// NodeCount is the number of nodes in the graph.
	NodeCount int `json:"node_count"`
}

// GhidraIndex describes a Ghidra export. It sits next to the exported
// graph data.
type GhidraIndex struct {
	IndexType IndexType         `json:"index_type"`
	Project   string            `json:"project"`
	Filename  string            `json:"filename"`
	Version   string            `json:"version,omitempty"`
	Sha256    string            `json:"sha256"`
	Functions []GhidraFunction  `json:"functions"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Index is a versioned index file. Content is a tagged union over the
// supported index types.
type Index struct {
	Version int          `json:"version"`
	Content IndexContent `json:"content"`
}

// IndexContent holds exactly one of the index variants.
type IndexContent struct {
	Github *GithubIndex
	Ghidra *GhidraIndex
}

// Type returns the discriminator of the populated variant.
func (c *IndexContent) Type() IndexType {
	switch {
	case c.Github != nil:
		return IndexTypeGithub
	case c.Ghidra != nil:
		return IndexTypeGhidra
	default:
		return ""
	}
}

func (c *IndexContent) UnmarshalJSON(data []byte) error {
	var head struct {
		IndexType IndexType `json:"index_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return goerr.Wrap(err, "failed to read index_type discriminator")
	}

	switch head.IndexType {
	case IndexTypeGithub:
		var idx GithubIndex
		if err := json.Unmarshal(data, &idx); err != nil {
			return goerr.Wrap(err, "failed to parse github index")
		}
		c.Github = &idx
	case IndexTypeGhidra:
		var idx GhidraIndex
		if err := json.Unmarshal(data, &idx); err != nil {
			return goerr.Wrap(err, "failed to parse ghidra index")
		}
		c.Ghidra = &idx
	default:
		return goerr.New("unknown index_type", goerr.V("index_type", head.IndexType))
	}
	return nil
}

func (c IndexContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.Github != nil:
		return json.Marshal(c.Github)
	case c.Ghidra != nil:
		return json.Marshal(c.Ghidra)
	default:
		return nil, goerr.New("empty index content")
	}
}

// ParseIndex parses and validates a single index file.
func ParseIndex(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, goerr.Wrap(err, "failed to parse index file")
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return &idx, nil
}

// Validate checks the invariants the scanner is supposed to uphold.
func (x *Index) Validate() error {
	if x.Version != IndexVersion {
		return goerr.New("unsupported index version",
			goerr.V("version", x.Version),
			goerr.V("supported", IndexVersion),
		)
	}

	switch c := x.Content; c.Type() {
	case IndexTypeGithub:
		if c.Github.Project == "" || c.Github.Ref == "" {
			return goerr.New("github index missing project or ref")
		}
		for _, fn := range c.Github.Functions {
			if fn.NodeCount <= 0 {
				return goerr.New("function node_count must be positive",
					goerr.V("filename", fn.Filename),
					goerr.V("node_count", fn.NodeCount),
				)
			}
			if fn.Filename == "" {
				return goerr.New("function missing filename")
			}
		}
	case IndexTypeGhidra:
		if c.Ghidra.Project == "" || c.Ghidra.Sha256 == "" {
			return goerr.New("ghidra index missing project or sha256")
		}
		for _, fn := range c.Ghidra.Functions {
			if !hexPattern.MatchString(fn.Address) {
				return goerr.New("function address must be lowercase hex",
					goerr.V("address", fn.Address),
				)
			}
		}
	default:
		return goerr.New("index has no content")
	}
	return nil
}
