package usecase

import (
	"math/rand"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

const (
	// MinNodeCount is the smallest graph worth posting. Functions below
	// it are straight lines and make for boring pictures.
	MinNodeCount = 7

	// weightOffset flattens the index weighting so small corpora still
	// surface regularly next to huge ones.
	weightOffset = 30
)

// Picked is the outcome of a selection: the chosen index and exactly
// one of the function variants, matching the index type.
type Picked struct {
	Index  *model.Index
	Github *model.GithubFunction
	Ghidra *model.GhidraFunction
}

// Picker selects a random function to post. Indices are weighted by
// their number of postable functions plus a constant offset; the
// function itself is chosen uniformly among postable ones.
type Picker struct {
	rng *rand.Rand
}

// NewPicker creates a picker. rng may be nil, in which case a
// time-seeded source is used.
func NewPicker(rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{rng: rng}
}

func postableGithub(idx *model.GithubIndex) []model.GithubFunction {
	var out []model.GithubFunction
	for _, fn := range idx.Functions {
		if fn.NodeCount >= MinNodeCount {
			out = append(out, fn)
		}
	}
	return out
}

func postableGhidra(idx *model.GhidraIndex) []model.GhidraFunction {
	var out []model.GhidraFunction
	for _, fn := range idx.Functions {
		if fn.NodeCount >= MinNodeCount {
			out = append(out, fn)
		}
	}
	return out
}

// PostableCount reports how many functions in an index clear the node
// count bar.
func PostableCount(idx *model.Index) int {
	switch c := idx.Content; c.Type() {
	case model.IndexTypeGithub:
		return len(postableGithub(c.Github))
	case model.IndexTypeGhidra:
		return len(postableGhidra(c.Ghidra))
	default:
		return 0
	}
}

// Pick chooses an index and a function from it. Indices without
// postable functions are never chosen; if none qualifies, Pick fails.
func (p *Picker) Pick(indices []*model.Index) (*Picked, error) {
	type candidate struct {
		index  *model.Index
		weight int
	}

	var candidates []candidate
	total := 0
	for _, idx := range indices {
		count := PostableCount(idx)
		if count == 0 {
			continue
		}
		weight := weightOffset + count
		candidates = append(candidates, candidate{index: idx, weight: weight})
		total += weight
	}
	if len(candidates) == 0 {
		return nil, goerr.New("no index has postable functions",
			goerr.V("indices", len(indices)),
			goerr.V("min_node_count", MinNodeCount),
		)
	}

	roll := p.rng.Intn(total)
	var chosen *model.Index
	for _, c := range candidates {
		if roll < c.weight {
			chosen = c.index
			break
		}
		roll -= c.weight
	}

	picked := &Picked{Index: chosen}
	switch c := chosen.Content; c.Type() {
	case model.IndexTypeGithub:
		functions := postableGithub(c.Github)
		picked.Github = &functions[p.rng.Intn(len(functions))]
	case model.IndexTypeGhidra:
		functions := postableGhidra(c.Ghidra)
		picked.Ghidra = &functions[p.rng.Intn(len(functions))]
	}
	return picked, nil
}
