// Package catalog implements the in-memory catalog browsing engine: category
// tree derivation from flat product attributes, descendant resolution,
// category matching, the filter pipeline, sorting and pagination.
//
// Every function in this package is pure over its inputs. A Snapshot is
// immutable once built; callers replace it wholesale when the product set
// changes.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Category levels, one per product category field.
const (
	LevelRoot = 0 // category1
	LevelSub  = 1 // category2
	LevelLeaf = 2 // category3

	maxLevels = 3
)

// NodeID identifies a CategoryNode by its full lineage.
type NodeID string

// CategoryNode is one level of a product category path. Nodes are derived
// from products and never stored on their own.
type CategoryNode struct {
	ID              NodeID          `json:"id"`
	Name            string          `json:"name"`
	Level           int             `json:"level"`
	ParentName      string          `json:"parentName,omitempty"`
	GrandParentName string          `json:"grandParentName,omitempty"`
	Children        []*CategoryNode `json:"children"`
}

// MakeNodeID derives the node id from level and lineage. Same-named nodes
// under different parents get different ids.
func MakeNodeID(level int, name, parentName, grandParentName string) NodeID {
	h := sha256.New()
	// NUL separators keep ("a b", "c") and ("a", "b c") apart.
	fmt.Fprintf(h, "%d\x00%s\x00%s\x00%s", level, grandParentName, parentName, name)
	return NodeID(fmt.Sprintf("c%d-%s", level, hex.EncodeToString(h.Sum(nil))[:16]))
}

// newNode builds a node for the given lineage. lineage is ordered
// root -> self and must hold between one and three names.
func newNode(lineage []string) *CategoryNode {
	level := len(lineage) - 1
	n := &CategoryNode{
		Name:     lineage[level],
		Level:    level,
		Children: []*CategoryNode{},
	}
	if level >= LevelSub {
		n.ParentName = lineage[level-1]
	}
	if level == LevelLeaf {
		n.GrandParentName = lineage[0]
	}
	n.ID = MakeNodeID(n.Level, n.Name, n.ParentName, n.GrandParentName)
	return n
}

// Lineage returns the ancestor names followed by the node's own name.
func (n *CategoryNode) Lineage() []string {
	switch n.Level {
	case LevelRoot:
		return []string{n.Name}
	case LevelSub:
		return []string{n.ParentName, n.Name}
	default:
		return []string{n.GrandParentName, n.ParentName, n.Name}
	}
}

// Path renders the lineage for display, e.g. "CCTV / IP / Camera".
func (n *CategoryNode) Path() string {
	return strings.Join(n.Lineage(), " / ")
}

// addChild attaches child unless a node with the same id is already present.
func (n *CategoryNode) addChild(child *CategoryNode) {
	for _, c := range n.Children {
		if c.ID == child.ID {
			return
		}
	}
	n.Children = append(n.Children, child)
}

// IDSet is an unordered set of node ids.
type IDSet map[NodeID]struct{}

// NewIDSet builds a set from ids, collapsing duplicates.
func NewIDSet(ids ...NodeID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// Index maps node ids to nodes.
type Index map[NodeID]*CategoryNode

// IndexNodes builds an Index over nodes.
func IndexNodes(nodes []*CategoryNode) Index {
	idx := make(Index, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return idx
}
