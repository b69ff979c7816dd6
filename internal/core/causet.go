package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/agenthands/causet/internal/core/model"
	"github.com/agenthands/causet/internal/core/quantify"
	"github.com/agenthands/causet/internal/driver"
)

// Causet holds the causal evidence base: factors, the evidence-justified
// links between them, and the bibliographic references backing those
// links. The in-memory graph is authoritative during a session;
// mutations write through to the graph store when one is attached.
//
// Quantification never reads Causet directly. Snapshot() hands out an
// immutable view so a run cannot observe mid-run mutation.
type Causet struct {
	Driver driver.GraphDriver // nil for a purely in-memory model

	// UUIDGenerator produces link ids when the caller supplies none.
	// Swappable for deterministic tests.
	UUIDGenerator func() string

	mu       sync.RWMutex
	nodes    map[string]*model.Node
	links    map[string]*model.Link
	refs     map[string]*model.Reference
	incoming map[string]map[string][]string // child -> parent -> link ids
}

// MaxNodeIDLen bounds factor ids so they stay usable as short labels in
// exports and CPT subset keys.
const MaxNodeIDLen = 5

func New(d driver.GraphDriver) *Causet {
	return &Causet{
		Driver:        d,
		UUIDGenerator: func() string { return uuid.New().String() },
		nodes:         make(map[string]*model.Node),
		links:         make(map[string]*model.Link),
		refs:          make(map[string]*model.Reference),
		incoming:      make(map[string]map[string][]string),
	}
}

// Load rebuilds the in-memory graph from the attached store, replacing
// any current contents.
func (c *Causet) Load(ctx context.Context) error {
	if c.Driver == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nodes = make(map[string]*model.Node)
	c.links = make(map[string]*model.Link)
	c.refs = make(map[string]*model.Reference)
	c.incoming = make(map[string]map[string][]string)

	res, err := c.Driver.ExecuteQuery(ctx, driver.LoadFactorsQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to load factors: %w", err)
	}
	for _, rec := range res.Records {
		m := rec.AsMap()
		n := &model.Node{
			ID:       stringValue(m, "id"),
			Name:     stringValue(m, "name"),
			Keywords: stringValue(m, "keywords"),
		}
		c.nodes[n.ID] = n
	}

	res, err = c.Driver.ExecuteQuery(ctx, driver.LoadReferencesQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to load references: %w", err)
	}
	for _, rec := range res.Records {
		m := rec.AsMap()
		r := &model.Reference{
			ID:        stringValue(m, "id"),
			Title:     stringValue(m, "title"),
			Year:      stringValue(m, "year"),
			Authors:   stringValue(m, "authors"),
			Type:      stringValue(m, "type"),
			Publisher: stringValue(m, "publisher"),
		}
		c.refs[r.ID] = r
	}

	res, err = c.Driver.ExecuteQuery(ctx, driver.LoadLinksQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to load links: %w", err)
	}
	for _, rec := range res.Records {
		link, err := linkFromRecord(rec.AsMap())
		if err != nil {
			return err
		}
		c.links[link.ID] = link
		c.index(link)
	}

	return nil
}

// AddNode creates a factor. Ids must be unique across nodes and short
// enough to read in subset keys.
func (c *Causet) AddNode(ctx context.Context, node model.Node) error {
	if node.ID == "" || len(node.ID) > MaxNodeIDLen {
		return fmt.Errorf("node id must be 1-%d characters, got %q", MaxNodeIDLen, node.ID)
	}
	// Ids appear inside comma-joined subset keys, so the separator and
	// anything else exotic is rejected up front.
	for _, r := range node.ID {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return fmt.Errorf("node id %q may only contain letters, digits, '_' and '-'", node.ID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.nodes[node.ID]; ok {
		return &AlreadyExistsError{ID: node.ID}
	}

	if c.Driver != nil {
		params := map[string]interface{}{
			"id":       node.ID,
			"name":     node.Name,
			"keywords": node.Keywords,
		}
		if _, err := c.Driver.ExecuteQuery(ctx, driver.SaveFactorQuery, params); err != nil {
			return fmt.Errorf("failed to save node [%s]: %w", node.ID, err)
		}
	}

	c.nodes[node.ID] = &node
	return nil
}

func (c *Causet) GetNode(id string) (*model.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[id]
	if !ok {
		return nil, &NotFoundError{Kind: "node", ID: id}
	}
	cp := *n
	return &cp, nil
}

// RemoveNode deletes a factor and cascades to every incident link.
func (c *Causet) RemoveNode(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.nodes[id]; !ok {
		return &NotFoundError{Kind: "node", ID: id}
	}

	if c.Driver != nil {
		if _, err := c.Driver.ExecuteQuery(ctx, driver.DeleteFactorQuery, map[string]interface{}{"id": id}); err != nil {
			return fmt.Errorf("failed to delete node [%s]: %w", id, err)
		}
	}

	for linkID, link := range c.links {
		if link.ParentID == id || link.ChildID == id {
			delete(c.links, linkID)
			c.unindex(link)
		}
	}
	delete(c.nodes, id)
	delete(c.incoming, id)
	return nil
}

// AddLink creates a causal link. Both endpoints must already exist; an
// optional reference id must resolve. A missing link id gets a UUID,
// and the edge key is assigned as the next free key for the ordered
// (parent, child) pair so parallel links stay distinct.
func (c *Causet) AddLink(ctx context.Context, link model.Link) (*model.Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if link.ID == "" {
		link.ID = c.UUIDGenerator()
	}
	if _, ok := c.links[link.ID]; ok {
		return nil, &AlreadyExistsError{ID: link.ID}
	}
	if _, ok := c.nodes[link.ParentID]; !ok {
		return nil, &NotFoundError{Kind: "node", ID: link.ParentID}
	}
	if _, ok := c.nodes[link.ChildID]; !ok {
		return nil, &NotFoundError{Kind: "node", ID: link.ChildID}
	}
	if link.RefID != "" {
		if _, ok := c.refs[link.RefID]; !ok {
			return nil, &NotFoundError{Kind: "reference", ID: link.RefID}
		}
	}

	link.EdgeKey = c.nextEdgeKey(link.ParentID, link.ChildID)

	if c.Driver != nil {
		if _, err := c.Driver.ExecuteQuery(ctx, driver.SaveCausalLinkQuery, linkParams(&link)); err != nil {
			return nil, fmt.Errorf("failed to save link [%s]: %w", link.ID, err)
		}
	}

	c.links[link.ID] = &link
	c.index(&link)
	return &link, nil
}

func (c *Causet) GetLink(id string) (*model.Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	link, ok := c.links[id]
	if !ok {
		return nil, &NotFoundError{Kind: "link", ID: id}
	}
	cp := *link
	return &cp, nil
}

func (c *Causet) RemoveLink(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	link, ok := c.links[id]
	if !ok {
		return &NotFoundError{Kind: "link", ID: id}
	}

	if c.Driver != nil {
		if _, err := c.Driver.ExecuteQuery(ctx, driver.DeleteCausalLinkQuery, map[string]interface{}{"id": id}); err != nil {
			return fmt.Errorf("failed to delete link [%s]: %w", id, err)
		}
	}

	delete(c.links, id)
	c.unindex(link)
	return nil
}

func (c *Causet) AddReference(ctx context.Context, ref model.Reference) error {
	if ref.ID == "" {
		return fmt.Errorf("reference id must not be empty")
	}
	if ref.Title == "" {
		return fmt.Errorf("reference [%s] must have a title", ref.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.refs[ref.ID]; ok {
		return &AlreadyExistsError{ID: ref.ID}
	}

	if c.Driver != nil {
		params := map[string]interface{}{
			"id":        ref.ID,
			"title":     ref.Title,
			"year":      ref.Year,
			"authors":   ref.Authors,
			"type":      ref.Type,
			"publisher": ref.Publisher,
		}
		if _, err := c.Driver.ExecuteQuery(ctx, driver.SaveReferenceQuery, params); err != nil {
			return fmt.Errorf("failed to save reference [%s]: %w", ref.ID, err)
		}
	}

	c.refs[ref.ID] = &ref
	return nil
}

func (c *Causet) GetReference(id string) (*model.Reference, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.refs[id]
	if !ok {
		return nil, &NotFoundError{Kind: "reference", ID: id}
	}
	cp := *r
	return &cp, nil
}

// RemoveReference deletes a reference and cascades to links citing it,
// since a link without its supporting evidence is no longer justified.
func (c *Causet) RemoveReference(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.refs[id]; !ok {
		return &NotFoundError{Kind: "reference", ID: id}
	}

	if c.Driver != nil {
		if _, err := c.Driver.ExecuteQuery(ctx, driver.DeleteLinksByReferenceQuery, map[string]interface{}{"id": id}); err != nil {
			return fmt.Errorf("failed to delete links citing reference [%s]: %w", id, err)
		}
		if _, err := c.Driver.ExecuteQuery(ctx, driver.DeleteReferenceQuery, map[string]interface{}{"id": id}); err != nil {
			return fmt.Errorf("failed to delete reference [%s]: %w", id, err)
		}
	}

	for linkID, link := range c.links {
		if link.RefID == id {
			delete(c.links, linkID)
			c.unindex(link)
		}
	}
	delete(c.refs, id)
	return nil
}

// Nodes returns all factors sorted by id.
func (c *Causet) Nodes() []model.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Links returns all causal links sorted by id.
func (c *Causet) Links() []model.Link {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Link, 0, len(c.links))
	for _, l := range c.links {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// References returns all references sorted by id.
func (c *Causet) References() []model.Reference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Reference, 0, len(c.refs))
	for _, r := range c.refs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns an immutable view of the graph for quantification.
func (c *Causet) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := &Snapshot{
		nodes:    make(map[string]model.Node, len(c.nodes)),
		links:    make(map[string]model.Link, len(c.links)),
		incoming: make(map[string]map[string][]string, len(c.incoming)),
	}
	for id, n := range c.nodes {
		s.nodes[id] = *n
	}
	for id, l := range c.links {
		s.links[id] = *l
	}
	for child, parents := range c.incoming {
		cp := make(map[string][]string, len(parents))
		for parent, ids := range parents {
			cp[parent] = append([]string(nil), ids...)
		}
		s.incoming[child] = cp
	}
	return s
}

// Quantify builds and runs a Quantifier for target against a fresh
// snapshot, returning the full CPT.
func (c *Causet) Quantify(target string, method quantify.Method, cfg quantify.Config) (quantify.CPT, error) {
	snap := c.Snapshot()
	if !snap.HasNode(target) {
		return nil, &NotFoundError{Kind: "node", ID: target}
	}
	q, err := quantify.New(snap, target, cfg)
	if err != nil {
		return nil, err
	}
	if err := q.Calculate(method); err != nil {
		return nil, err
	}
	return q.Results()
}

// nextEdgeKey returns the smallest unused edge key for the ordered
// (parent, child) pair. Callers hold the write lock.
func (c *Causet) nextEdgeKey(parent, child string) int {
	key := 0
	for _, id := range c.incoming[child][parent] {
		if l := c.links[id]; l.EdgeKey >= key {
			key = l.EdgeKey + 1
		}
	}
	return key
}

func (c *Causet) index(link *model.Link) {
	if c.incoming[link.ChildID] == nil {
		c.incoming[link.ChildID] = make(map[string][]string)
	}
	c.incoming[link.ChildID][link.ParentID] = append(c.incoming[link.ChildID][link.ParentID], link.ID)
}

func (c *Causet) unindex(link *model.Link) {
	parents := c.incoming[link.ChildID]
	ids := parents[link.ParentID]
	for i, id := range ids {
		if id == link.ID {
			parents[link.ParentID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(parents[link.ParentID]) == 0 {
		delete(parents, link.ParentID)
	}
}

// Snapshot is a frozen copy of the graph implementing
// quantify.GraphView. It is safe for concurrent reads and never mutated
// after construction.
type Snapshot struct {
	nodes    map[string]model.Node
	links    map[string]model.Link
	incoming map[string]map[string][]string
}

func (s *Snapshot) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

func (s *Snapshot) Predecessors(target string) []string {
	out := make([]string, 0, len(s.incoming[target]))
	for parent := range s.incoming[target] {
		out = append(out, parent)
	}
	sort.Strings(out)
	return out
}

func (s *Snapshot) LinksBetween(parent, child string) []*model.Link {
	ids := s.incoming[child][parent]
	out := make([]*model.Link, 0, len(ids))
	for _, id := range ids {
		l := s.links[id]
		out = append(out, &l)
	}
	return out
}

func (s *Snapshot) GetLink(id string) (*model.Link, error) {
	l, ok := s.links[id]
	if !ok {
		return nil, &NotFoundError{Kind: "link", ID: id}
	}
	return &l, nil
}

func stringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatValue(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func intValue(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func linkFromRecord(m map[string]interface{}) (*model.Link, error) {
	link := &model.Link{
		ID:              stringValue(m, "id"),
		ParentID:        stringValue(m, "parent_id"),
		ChildID:         stringValue(m, "child_id"),
		CredibilityMemo: stringValue(m, "m1_memo"),
		StrengthMemo:    stringValue(m, "m2_memo"),
		ConfidenceMemo:  stringValue(m, "m3_memo"),
		RefID:           stringValue(m, "ref_id"),
		EdgeKey:         intValue(m, "edge_key"),
	}

	for _, f := range []struct {
		prefix string
		dst    *model.Estimate
	}{
		{"m1", &link.Credibility},
		{"m2", &link.EvidenceStrength},
		{"m3", &link.Confidence},
	} {
		typ, err := model.ParseEstimateType(stringValue(m, f.prefix+"_type"))
		if err != nil {
			return nil, fmt.Errorf("link [%s] %s: %w", link.ID, f.prefix, err)
		}
		f.dst.Type = typ
		f.dst.A = floatValue(m, f.prefix+"_a")
		f.dst.B = floatValue(m, f.prefix+"_b")
	}

	return link, nil
}

func linkParams(link *model.Link) map[string]interface{} {
	return map[string]interface{}{
		"id":        link.ID,
		"parent_id": link.ParentID,
		"child_id":  link.ChildID,
		"m1_type":   string(link.Credibility.Type),
		"m1_a":      link.Credibility.A,
		"m1_b":      link.Credibility.B,
		"m2_type":   string(link.EvidenceStrength.Type),
		"m2_a":      link.EvidenceStrength.A,
		"m2_b":      link.EvidenceStrength.B,
		"m3_type":   string(link.Confidence.Type),
		"m3_a":      link.Confidence.A,
		"m3_b":      link.Confidence.B,
		"m1_memo":   link.CredibilityMemo,
		"m2_memo":   link.StrengthMemo,
		"m3_memo":   link.ConfidenceMemo,
		"ref_id":    link.RefID,
		"edge_key":  link.EdgeKey,
	}
}
