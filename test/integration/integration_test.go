//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/causet/internal/core"
	"github.com/agenthands/causet/internal/core/model"
	"github.com/agenthands/causet/internal/core/quantify"
	"github.com/agenthands/causet/internal/driver"
)

func TestFullFlow(t *testing.T) {
	// Load environment if present
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	user := os.Getenv("MEMGRAPH_USER")
	pwd := os.Getenv("MEMGRAPH_PASSWORD")

	d, err := driver.NewMemgraphDriver(uri, user, pwd)
	require.NoError(t, err)
	defer d.Close(context.Background())

	ctx := context.Background()
	require.NoError(t, d.BuildIndices(ctx))

	c := core.New(d)
	require.NoError(t, c.Load(ctx))

	// Unique ids for this run so concurrent runs don't collide.
	run := uuid.New().String()[:4]
	target := "T" + run[:3]
	parentA := "A" + run[:3]
	parentB := "B" + run[:3]
	refID := fmt.Sprintf("ref-%s", run)

	cleanup := func() {
		_ = c.RemoveNode(ctx, target)
		_ = c.RemoveNode(ctx, parentA)
		_ = c.RemoveNode(ctx, parentB)
		_ = c.RemoveReference(ctx, refID)
	}
	defer cleanup()

	require.NoError(t, c.AddReference(ctx, model.Reference{ID: refID, Title: "Integration fixture"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: target, Name: "Target factor"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: parentA, Name: "Parent A"}))
	require.NoError(t, c.AddNode(ctx, model.Node{ID: parentB, Name: "Parent B"}))

	uniform := func(a, b float64) model.Estimate {
		return model.Estimate{Type: model.Uniform, A: a, B: b}
	}
	_, err = c.AddLink(ctx, model.Link{
		ParentID:         parentA,
		ChildID:          target,
		Credibility:      uniform(0.8, 0.9),
		EvidenceStrength: uniform(0.6, 0.7),
		Confidence:       uniform(0.9, 0.95),
		RefID:            refID,
	})
	require.NoError(t, err)
	_, err = c.AddLink(ctx, model.Link{
		ParentID:         parentB,
		ChildID:          target,
		Credibility:      uniform(0.5, 0.6),
		EvidenceStrength: uniform(0.4, 0.5),
		Confidence:       uniform(0.7, 0.8),
		RefID:            refID,
	})
	require.NoError(t, err)

	// Reload into a fresh model to prove the writes reached the store.
	c2 := core.New(d)
	require.NoError(t, c2.Load(ctx))

	_, err = c2.GetNode(target)
	require.NoError(t, err)
	links := c2.Links()
	found := 0
	for _, l := range links {
		if l.ChildID == target {
			found++
		}
	}
	assert.Equal(t, 2, found)

	cpt, err := c2.Quantify(target, quantify.Arithmetic, quantify.Config{Seed: 7})
	require.NoError(t, err)
	require.Len(t, cpt, 3)

	single := cpt[parentA]
	pair := cpt[quantify.SubsetKey([]string{parentA, parentB})]
	assert.Greater(t, pair.Mean, single.Mean)
	assert.InDelta(t, 0.65, single.Mean, 0.03)

	// Cascade check: removing a node must take its links with it.
	require.NoError(t, c2.RemoveNode(ctx, parentB))
	c3 := core.New(d)
	require.NoError(t, c3.Load(ctx))
	for _, l := range c3.Links() {
		assert.NotEqual(t, parentB, l.ParentID)
	}
}
