package catalog

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// branchyProducts has "Camera" under two roots to catch cross-branch leaks.
func branchyProducts() []models.Product {
	return []models.Product{
		{ID: "a", Name: "Dome", Category1: "CCTV", Category2: "Camera", Category3: "Dome", Price: 120, Availability: 3},
		{ID: "b", Name: "Bullet", Category1: "CCTV", Category2: "Camera", Category3: "Bullet", Price: 90, Availability: 0},
		{ID: "c", Name: "NVR 8ch", Category1: "CCTV", Category2: "Recorder", Price: 300, Availability: 1},
		{ID: "d", Name: "Face Terminal", Category1: "Access Control", Category2: "Camera", Category3: "Face", Price: 450, Availability: 2},
		{ID: "e", Name: "Card Reader", Category1: "Access Control", Category2: "Reader", Price: 60, Availability: 7},
		{ID: "f", Name: "Spare Lens", Category1: "CCTV", Price: 15, Availability: 4},
	}
}

func id(lineage ...string) NodeID {
	return newNode(lineage).ID
}

// render flattens a forest into sorted "path -> child ids" lines.
func render(roots []*CategoryNode) string {
	var lines []string
	var walk func(n *CategoryNode)
	walk = func(n *CategoryNode) {
		kids := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			kids = append(kids, string(c.ID))
			walk(c)
		}
		sort.Strings(kids)
		lines = append(lines, fmt.Sprintf("%s|%s -> %s", n.ID, n.Path(), strings.Join(kids, ",")))
	}
	for _, r := range roots {
		walk(r)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func TestMakeNodeID_LineageDisambiguates(t *testing.T) {
	a := MakeNodeID(LevelSub, "Camera", "CCTV", "")
	b := MakeNodeID(LevelSub, "Camera", "Access Control", "")
	c := MakeNodeID(LevelSub, "Camera", "CCTV", "")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
	assert.NotEqual(t, MakeNodeID(LevelRoot, "Camera", "", ""), a)
}

func TestExtractNodes_DeduplicatesByLineage(t *testing.T) {
	nodes := ExtractNodes(branchyProducts())

	// CCTV, Access Control | CCTV/Camera, CCTV/Recorder, AC/Camera, AC/Reader |
	// CCTV/Camera/Dome, CCTV/Camera/Bullet, AC/Camera/Face
	require.Len(t, nodes, 9)

	levels := map[int]int{}
	names := map[string]int{}
	for _, n := range nodes {
		levels[n.Level]++
		names[n.Name]++
	}
	assert.Equal(t, map[int]int{0: 2, 1: 4, 2: 3}, levels)
	assert.Equal(t, 2, names["Camera"])
}

func TestExtractNodes_IgnoresFieldsAfterGap(t *testing.T) {
	nodes := ExtractNodes([]models.Product{
		{ID: "x", Category1: "Power", Category3: "Orphan"},
		{ID: "y", Category2: "NoRoot"},
	})

	require.Len(t, nodes, 1)
	assert.Equal(t, "Power", nodes[0].Name)
	assert.Equal(t, LevelRoot, nodes[0].Level)
}

func TestExtractNodes_Empty(t *testing.T) {
	assert.Empty(t, ExtractNodes(nil))
	assert.Empty(t, BuildTree(nil))
}

func TestBuildTree_NoCrossBranchLeakage(t *testing.T) {
	roots := BuildTree(ExtractNodes(branchyProducts()))
	require.Len(t, roots, 2)

	// Roots are ordered by name.
	ac, cctv := roots[0], roots[1]
	require.Equal(t, "Access Control", ac.Name)
	require.Equal(t, "CCTV", cctv.Name)

	require.Len(t, cctv.Children, 2)
	cctvCamera := cctv.Children[0]
	require.Equal(t, "Camera", cctvCamera.Name)
	leafNames := []string{}
	for _, leaf := range cctvCamera.Children {
		leafNames = append(leafNames, leaf.Name)
		assert.Equal(t, "CCTV", leaf.GrandParentName)
	}
	assert.Equal(t, []string{"Bullet", "Dome"}, leafNames)

	acCamera := ac.Children[0]
	require.Equal(t, "Camera", acCamera.Name)
	require.Len(t, acCamera.Children, 1)
	assert.Equal(t, "Face", acCamera.Children[0].Name)
}

func TestBuildTree_SharesNodesWithExtraction(t *testing.T) {
	nodes := ExtractNodes(branchyProducts())
	roots := BuildTree(nodes)
	idx := IndexNodes(nodes)

	for _, r := range roots {
		assert.Same(t, idx[r.ID], r)
		for _, c := range r.Children {
			assert.Same(t, idx[c.ID], c)
		}
	}
}

func TestBuildTree_IdempotentAndOrderIndependent(t *testing.T) {
	products := branchyProducts()
	nodes := ExtractNodes(products)
	first := render(BuildTree(nodes))

	// Re-attaching over the same nodes must not duplicate children.
	assert.Equal(t, first, render(BuildTree(nodes)))

	reversed := make([]models.Product, len(products))
	for i, p := range products {
		reversed[len(products)-1-i] = p
	}
	assert.Equal(t, first, render(BuildTree(ExtractNodes(reversed))))
}

func TestResolveDescendants_RootClosure(t *testing.T) {
	nodes := ExtractNodes(branchyProducts())

	got := ResolveDescendants(NewIDSet(id("CCTV")), nodes)

	want := NewIDSet(
		id("CCTV"),
		id("CCTV", "Camera"),
		id("CCTV", "Recorder"),
		id("CCTV", "Camera", "Dome"),
		id("CCTV", "Camera", "Bullet"),
	)
	assert.Equal(t, want, got)
	assert.False(t, got.Has(id("Access Control", "Camera", "Face")))
}

func TestResolveDescendants_SubLevelUsesGrandparent(t *testing.T) {
	nodes := ExtractNodes(branchyProducts())

	got := ResolveDescendants(NewIDSet(id("Access Control", "Camera")), nodes)

	assert.Equal(t, NewIDSet(
		id("Access Control", "Camera"),
		id("Access Control", "Camera", "Face"),
	), got)
}

func TestResolveDescendants_LeafAndUnknown(t *testing.T) {
	nodes := ExtractNodes(branchyProducts())
	leaf := id("CCTV", "Camera", "Dome")

	got := ResolveDescendants(NewIDSet(leaf, "stale-id", leaf), nodes)

	assert.Equal(t, NewIDSet(leaf, "stale-id"), got)
	assert.Empty(t, ResolveDescendants(NewIDSet(), nodes))
}

func TestResolveDescendants_UnionOfSelections(t *testing.T) {
	nodes := ExtractNodes(branchyProducts())

	got := ResolveDescendants(NewIDSet(id("CCTV", "Recorder"), id("Access Control")), nodes)

	assert.Len(t, got, 5)
	assert.True(t, got.Has(id("Access Control", "Reader")))
	assert.True(t, got.Has(id("CCTV", "Recorder")))
}
