package catalog

import (
	"sort"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// ExtractNodes derives the deduplicated category nodes of products. A
// product contributes one node per contiguous populated level; deeper
// fields after a gap are ignored. Nodes are returned grouped by level, in
// first-seen order within a level.
func ExtractNodes(products []models.Product) []*CategoryNode {
	seen := make(map[NodeID]*CategoryNode)
	byLevel := make([][]*CategoryNode, maxLevels)

	for i := range products {
		path := products[i].CategoryPath()
		for depth := 1; depth <= len(path); depth++ {
			n := newNode(path[:depth])
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = n
			byLevel[n.Level] = append(byLevel[n.Level], n)
		}
	}

	nodes := make([]*CategoryNode, 0, len(seen))
	for _, level := range byLevel {
		nodes = append(nodes, level...)
	}
	return nodes
}

// BuildTree links nodes into a forest and returns the roots. Nodes are
// shared with the input slice, not copied. Level-2 nodes are attached only
// when both their parent and grandparent names match, so a level-1 name that
// appears under two roots does not leak children across branches.
// Re-running BuildTree over the same nodes is a no-op.
func BuildTree(nodes []*CategoryNode) []*CategoryNode {
	var roots, subs, leaves []*CategoryNode
	for _, n := range nodes {
		switch n.Level {
		case LevelRoot:
			roots = append(roots, n)
		case LevelSub:
			subs = append(subs, n)
		case LevelLeaf:
			leaves = append(leaves, n)
		}
	}

	for _, root := range roots {
		for _, sub := range subs {
			if sub.ParentName != root.Name {
				continue
			}
			root.addChild(sub)
			for _, leaf := range leaves {
				if leaf.ParentName == sub.Name && leaf.GrandParentName == root.Name {
					sub.addChild(leaf)
				}
			}
		}
	}

	sortNodes(roots)
	return roots
}

// sortNodes orders siblings by name, recursively, so rendering is stable
// regardless of product order.
func sortNodes(nodes []*CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
