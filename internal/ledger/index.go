package ledger

import (
	"github.com/yungbote/competence-ledger/internal/domain"
	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

// Node is one competency. Structural fields are fixed at build time; level and
// history are only written by the Engine (and by Ledger.Hydrate at load).
type Node struct {
	Code            string
	Label           string
	GroupID         string
	GroupLabel      string
	LevelGroupIndex int

	level   int
	history domain.History
}

func (n *Node) Level() int { return n.level }

// History returns a copy of the node's achievement timestamps.
func (n *Node) History() domain.History { return n.history.Clone() }

func (n *Node) State() domain.NodeState {
	return domain.NodeState{Level: n.level, History: n.history.Clone()}
}

// Index is a flat lookup from code to node, in taxonomy order.
type Index struct {
	nodes map[string]*Node
	order []string
}

// BuildIndex flattens the taxonomy. Every node starts at level 0 with an empty history.
func BuildIndex(t taxonomy.Taxonomy) (*Index, error) {
	idx := &Index{
		nodes: make(map[string]*Node, t.NodeCount()),
		order: make([]string, 0, t.NodeCount()),
	}
	for _, g := range t.Groups {
		for li, lg := range g.Levels {
			for _, def := range lg.Nodes {
				if !domain.ValidCode(def.Code) {
					return nil, &TaxonomyError{Code: TaxonomyErrorInvalidCode, NodeRef: def.Code, GroupID: g.ID}
				}
				if _, dup := idx.nodes[def.Code]; dup {
					return nil, &TaxonomyError{Code: TaxonomyErrorDuplicateCode, NodeRef: def.Code, GroupID: g.ID}
				}
				idx.nodes[def.Code] = &Node{
					Code:            def.Code,
					Label:           def.Label,
					GroupID:         g.ID,
					GroupLabel:      g.Label,
					LevelGroupIndex: li,
					history:         domain.History{},
				}
				idx.order = append(idx.order, def.Code)
			}
		}
	}
	if len(idx.order) == 0 {
		return nil, &TaxonomyError{Code: TaxonomyErrorEmpty}
	}
	return idx, nil
}

// Lookup returns the node for code, or ErrNotFound.
func (idx *Index) Lookup(code string) (*Node, error) {
	if n, ok := idx.nodes[code]; ok {
		return n, nil
	}
	return nil, ErrNotFound
}

func (idx *Index) Len() int { return len(idx.order) }

// Nodes returns every node in taxonomy order.
func (idx *Index) Nodes() []*Node {
	out := make([]*Node, 0, len(idx.order))
	for _, code := range idx.order {
		out = append(out, idx.nodes[code])
	}
	return out
}
