package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/causet/internal/core/model"
	"github.com/agenthands/causet/internal/core/quantify"
	"github.com/agenthands/causet/internal/driver"
)

func uniform(a, b float64) model.Estimate {
	return model.Estimate{Type: model.Uniform, A: a, B: b}
}

func testLink(id, parent, child string) model.Link {
	return model.Link{
		ID:               id,
		ParentID:         parent,
		ChildID:          child,
		Credibility:      uniform(0.7, 0.8),
		EvidenceStrength: uniform(0.5, 0.6),
		Confidence:       uniform(0.8, 0.9),
	}
}

func TestAddNodeValidation(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.AddNode(ctx, model.Node{ID: "safty", Name: "Safety culture"}))

	// Duplicate id.
	err := c.AddNode(ctx, model.Node{ID: "safty"})
	var exists *AlreadyExistsError
	assert.ErrorAs(t, err, &exists)

	// Empty and over-long ids.
	assert.Error(t, c.AddNode(ctx, model.Node{ID: ""}))
	assert.Error(t, c.AddNode(ctx, model.Node{ID: "toolongid"}))

	// The subset-key separator and other exotic characters are
	// rejected so ids can never collide with a multi-member key.
	assert.Error(t, c.AddNode(ctx, model.Node{ID: "a,b"}))
	assert.Error(t, c.AddNode(ctx, model.Node{ID: "a b"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "a_b-1"}))
}

func TestAddLinkPreconditions(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.AddNode(ctx, model.Node{ID: "A"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "T"}))

	var notFound *NotFoundError

	_, err := c.AddLink(ctx, testLink("L1", "ghost", "T"))
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.ID)

	_, err = c.AddLink(ctx, testLink("L1", "A", "ghost"))
	assert.ErrorAs(t, err, &notFound)

	// Unknown reference id.
	link := testLink("L1", "A", "T")
	link.RefID = "noref"
	_, err = c.AddLink(ctx, link)
	assert.ErrorAs(t, err, &notFound)

	// Valid link; a second insert with the same id collides.
	_, err = c.AddLink(ctx, testLink("L1", "A", "T"))
	require.NoError(t, err)
	_, err = c.AddLink(ctx, testLink("L1", "A", "T"))
	var exists *AlreadyExistsError
	assert.ErrorAs(t, err, &exists)
}

func TestParallelLinksGetDistinctEdgeKeys(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.AddNode(ctx, model.Node{ID: "A"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "T"}))

	l1, err := c.AddLink(ctx, testLink("L1", "A", "T"))
	require.NoError(t, err)
	l2, err := c.AddLink(ctx, testLink("L2", "A", "T"))
	require.NoError(t, err)

	assert.Equal(t, 0, l1.EdgeKey)
	assert.Equal(t, 1, l2.EdgeKey)

	// Removing the second link frees its key for the next insert.
	require.NoError(t, c.RemoveLink(ctx, "L2"))
	l3, err := c.AddLink(ctx, testLink("L3", "A", "T"))
	require.NoError(t, err)
	assert.Equal(t, 1, l3.EdgeKey)
}

func TestLinkIDGeneratedWhenMissing(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.AddNode(ctx, model.Node{ID: "A"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "T"}))

	counter := 0
	c.UUIDGenerator = func() string {
		counter++
		return fmt.Sprintf("gen-%d", counter)
	}

	link := testLink("", "A", "T")
	created, err := c.AddLink(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", created.ID)
}

func TestRemoveNodeCascades(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "T"} {
		require.NoError(t, c.AddNode(ctx, model.Node{ID: id}))
	}
	_, err := c.AddLink(ctx, testLink("L1", "A", "T"))
	require.NoError(t, err)
	_, err = c.AddLink(ctx, testLink("L2", "B", "T"))
	require.NoError(t, err)

	require.NoError(t, c.RemoveNode(ctx, "A"))

	_, err = c.GetLink("L1")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)

	// B's link survives.
	_, err = c.GetLink("L2")
	assert.NoError(t, err)
	assert.Equal(t, []string{"B"}, c.Snapshot().Predecessors("T"))
}

func TestRemoveReferenceCascades(t *testing.T) {
	mock := &MockDriver{}
	c := New(mock)
	ctx := context.Background()

	require.NoError(t, c.AddReference(ctx, model.Reference{ID: "r1", Title: "Safety climate survey"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "A"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "T"}))

	link := testLink("L1", "A", "T")
	link.RefID = "r1"
	_, err := c.AddLink(ctx, link)
	require.NoError(t, err)

	require.NoError(t, c.RemoveReference(ctx, "r1"))

	_, err = c.GetLink("L1")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)

	// The store must see the same cascade: links citing the reference
	// are deleted before the reference itself.
	n := len(mock.Queries)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, driver.DeleteLinksByReferenceQuery, mock.Queries[n-2])
	assert.Equal(t, driver.DeleteReferenceQuery, mock.Queries[n-1])
}

func TestReferenceValidation(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	assert.Error(t, c.AddReference(ctx, model.Reference{ID: "", Title: "x"}))
	assert.Error(t, c.AddReference(ctx, model.Reference{ID: "r1"})) // no title

	require.NoError(t, c.AddReference(ctx, model.Reference{ID: "r1", Title: "x"}))
	var exists *AlreadyExistsError
	assert.ErrorAs(t, c.AddReference(ctx, model.Reference{ID: "r1", Title: "y"}), &exists)
}

func TestSnapshotIsImmutable(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.AddNode(ctx, model.Node{ID: "A"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "T"}))
	_, err := c.AddLink(ctx, testLink("L1", "A", "T"))
	require.NoError(t, err)

	snap := c.Snapshot()

	// Mutations after the snapshot must not leak into it.
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "B"}))
	_, err = c.AddLink(ctx, testLink("L2", "B", "T"))
	require.NoError(t, err)
	require.NoError(t, c.RemoveLink(ctx, "L1"))

	assert.Equal(t, []string{"A"}, snap.Predecessors("T"))
	assert.False(t, snap.HasNode("B"))
	_, err = snap.GetLink("L1")
	assert.NoError(t, err)
}

func TestQuantifyThroughModel(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "T"} {
		require.NoError(t, c.AddNode(ctx, model.Node{ID: id}))
	}
	_, err := c.AddLink(ctx, testLink("L1", "A", "T"))
	require.NoError(t, err)
	_, err = c.AddLink(ctx, testLink("L2", "B", "T"))
	require.NoError(t, err)

	cpt, err := c.Quantify("T", quantify.Arithmetic, quantify.Config{SampleSize: 500, Seed: 1})
	require.NoError(t, err)
	assert.Len(t, cpt, 3)
}

func TestWriteThroughToDriver(t *testing.T) {
	mock := &MockDriver{}
	c := New(mock)
	ctx := context.Background()

	require.NoError(t, c.AddNode(ctx, model.Node{ID: "A", Name: "Alpha"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: "T"}))
	_, err := c.AddLink(ctx, testLink("L1", "A", "T"))
	require.NoError(t, err)

	require.Len(t, mock.Queries, 3)
	assert.Equal(t, driver.SaveCausalLinkQuery, mock.Queries[2])
	assert.Equal(t, "L1", mock.QueryParams["id"])
	assert.Equal(t, 0, mock.QueryParams["edge_key"])
	assert.Equal(t, "UNIFORM", mock.QueryParams["m1_type"])
}

func TestLoadRebuildsGraph(t *testing.T) {
	record := func(keys []string, values []interface{}) *neo4j.Record {
		return &neo4j.Record{Keys: keys, Values: values}
	}

	mock := &MockDriver{
		MockResults: map[string]neo4j.EagerResult{
			driver.LoadFactorsQuery: {Records: []*neo4j.Record{
				record([]string{"id", "name", "keywords"}, []interface{}{"A", "Alpha", ""}),
				record([]string{"id", "name", "keywords"}, []interface{}{"T", "Target", "outcome"}),
			}},
			driver.LoadReferencesQuery: {Records: []*neo4j.Record{
				record([]string{"id", "title", "year", "authors", "type", "publisher"},
					[]interface{}{"r1", "A study", "2019", "Smith, J.", "JOUR", "Elsevier"}),
			}},
			driver.LoadLinksQuery: {Records: []*neo4j.Record{
				record(
					[]string{"id", "parent_id", "child_id",
						"m1_type", "m1_a", "m1_b", "m2_type", "m2_a", "m2_b",
						"m3_type", "m3_a", "m3_b", "m1_memo", "m2_memo", "m3_memo",
						"ref_id", "edge_key"},
					[]interface{}{"L1", "A", "T",
						"UNIFORM", 0.7, 0.8, "NORMAL", 0.5, 0.6,
						"UNIFORM", 0.8, 0.9, "memo1", "", "",
						"r1", int64(0)},
				),
			}},
		},
	}

	c := New(mock)
	require.NoError(t, c.Load(context.Background()))

	assert.Len(t, c.Nodes(), 2)
	assert.Len(t, c.References(), 1)

	link, err := c.GetLink("L1")
	require.NoError(t, err)
	assert.Equal(t, "A", link.ParentID)
	assert.Equal(t, model.Normal, link.EvidenceStrength.Type)
	assert.Equal(t, 0.6, link.EvidenceStrength.B)
	assert.Equal(t, "memo1", link.CredibilityMemo)
	assert.Equal(t, []string{"A"}, c.Snapshot().Predecessors("T"))
}
