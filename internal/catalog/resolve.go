package catalog

import "github.com/GTDGit/gtd_catalog/internal/models"

// ResolveDescendants expands each selected id into itself plus every node
// below it. Unknown ids are kept verbatim; they match no product downstream.
func ResolveDescendants(selected IDSet, nodes []*CategoryNode) IDSet {
	resolved := make(IDSet, len(selected))
	if len(selected) == 0 {
		return resolved
	}
	idx := IndexNodes(nodes)

	for id := range selected {
		resolved[id] = struct{}{}
		n, ok := idx[id]
		if !ok {
			continue
		}
		switch n.Level {
		case LevelRoot:
			for _, sub := range nodes {
				if sub.Level != LevelSub || sub.ParentName != n.Name {
					continue
				}
				resolved[sub.ID] = struct{}{}
				for _, leaf := range nodes {
					if leaf.Level == LevelLeaf && leaf.ParentName == sub.Name && leaf.GrandParentName == n.Name {
						resolved[leaf.ID] = struct{}{}
					}
				}
			}
		case LevelSub:
			for _, leaf := range nodes {
				if leaf.Level == LevelLeaf && leaf.ParentName == n.Name && leaf.GrandParentName == n.ParentName {
					resolved[leaf.ID] = struct{}{}
				}
			}
		}
	}
	return resolved
}

// MatchesCategories reports whether p belongs to any of the resolved
// categories. An empty resolved set applies no category filter.
func MatchesCategories(p *models.Product, resolved IDSet, idx Index) bool {
	if len(resolved) == 0 {
		return true
	}
	for id := range resolved {
		n, ok := idx[id]
		if !ok {
			continue
		}
		if matchesNode(p, n) {
			return true
		}
	}
	return false
}

func matchesNode(p *models.Product, n *CategoryNode) bool {
	switch n.Level {
	case LevelRoot:
		return p.Category1 == n.Name
	case LevelSub:
		return p.Category2 == n.Name && p.Category1 == n.ParentName
	case LevelLeaf:
		return p.Category3 == n.Name && p.Category2 == n.ParentName && p.Category1 == n.GrandParentName
	}
	return false
}
