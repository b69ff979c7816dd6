package quantify

import (
	"fmt"

	"github.com/agenthands/causet/internal/core/model"
)

// stubGraph is a hand-rolled GraphView over a flat link list.
type stubGraph struct {
	nodes map[string]bool
	links []*model.Link
}

func newStubGraph(nodeIDs ...string) *stubGraph {
	g := &stubGraph{nodes: make(map[string]bool)}
	for _, id := range nodeIDs {
		g.nodes[id] = true
	}
	return g
}

func (g *stubGraph) add(link *model.Link) *stubGraph {
	g.links = append(g.links, link)
	return g
}

func (g *stubGraph) HasNode(id string) bool { return g.nodes[id] }

func (g *stubGraph) Predecessors(target string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range g.links {
		if l.ChildID == target && !seen[l.ParentID] {
			seen[l.ParentID] = true
			out = append(out, l.ParentID)
		}
	}
	return out
}

func (g *stubGraph) LinksBetween(parent, child string) []*model.Link {
	var out []*model.Link
	for _, l := range g.links {
		if l.ParentID == parent && l.ChildID == child {
			out = append(out, l)
		}
	}
	return out
}

func (g *stubGraph) GetLink(id string) (*model.Link, error) {
	for _, l := range g.links {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("link [%s] not found", id)
}

// phantomParentGraph reports a fixed parent set regardless of whether
// any link backs it, for exercising missing-evidence handling.
type phantomParentGraph struct {
	*stubGraph
	parents []string
}

func (g *phantomParentGraph) Predecessors(target string) []string {
	return append([]string(nil), g.parents...)
}

// uniformLink builds a link whose three estimates are all UNIFORM, from
// (lo, hi) pairs in m1, m2, m3 order.
func uniformLink(id, parent, child string, edgeKey int, m1, m2, m3 [2]float64) *model.Link {
	return &model.Link{
		ID:               id,
		ParentID:         parent,
		ChildID:          child,
		EdgeKey:          edgeKey,
		Credibility:      model.Estimate{Type: model.Uniform, A: m1[0], B: m1[1]},
		EvidenceStrength: model.Estimate{Type: model.Uniform, A: m2[0], B: m2[1]},
		Confidence:       model.Estimate{Type: model.Uniform, A: m3[0], B: m3[1]},
	}
}
