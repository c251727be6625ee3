package classifications

import (
	"strings"

	"github.com/JaimeStill/optigate/pkg/faults"
)

// TreeRow is one source row of major, middle and minor names.
// Any of the names may be blank.
type TreeRow struct {
	Major  string
	Middle string
	Minor  string
}

// Node is a hierarchy node produced by BuildTree. Nodes are identified by
// (Level, Name) within a facility; Parent names the node one level up.
type Node struct {
	Level  Level
	Name   string
	Parent string
}

// Tree is the ordered node set derived from a sheet of rows.
// Nodes are ordered by level, then by first appearance.
type Tree struct {
	Nodes   []Node
	Skipped int
}

type nodeKey struct {
	level Level
	name  string
}

// BuildTree derives the hierarchy nodes from rows.
//
// A row without a major name is skipped. A minor name without a middle name
// is promoted to level 2 under the major. A node keeps the parent of its first
// appearance. Aliases, when non-nil, rename source names before grouping.
func BuildTree(rows []TreeRow, aliases map[string]string) Tree {
	var (
		tree   Tree
		seen   = make(map[nodeKey]bool)
		levels [3][]Node
	)

	add := func(n Node) {
		k := nodeKey{n.Level, n.Name}
		if seen[k] {
			return
		}
		seen[k] = true
		levels[n.Level-1] = append(levels[n.Level-1], n)
	}

	for _, row := range rows {
		major := normalizeName(row.Major, aliases)
		middle := normalizeName(row.Middle, aliases)
		minor := normalizeName(row.Minor, aliases)

		if major == "" {
			tree.Skipped++
			continue
		}

		add(Node{Level: LevelMajor, Name: major})

		switch {
		case middle != "":
			add(Node{Level: LevelMiddle, Name: middle, Parent: major})
			if minor != "" {
				add(Node{Level: LevelMinor, Name: minor, Parent: middle})
			}
		case minor != "":
			add(Node{Level: LevelMiddle, Name: minor, Parent: major})
		}
	}

	for _, nodes := range levels {
		tree.Nodes = append(tree.Nodes, nodes...)
	}
	return tree
}

// CheckHierarchy validates the placement of a node at level under parent.
// Level 1 nodes have no parent; deeper nodes need a parent exactly one level
// up that belongs to the same facility.
func CheckHierarchy(level Level, facilityID *int64, parent *Classification) error {
	if !level.Valid() {
		return faults.Validation("level must be 1, 2 or 3, got %d", level).With(int(level))
	}

	if level == LevelMajor {
		if parent != nil {
			return faults.Validation("level 1 classification cannot have a parent").With(parent.ID)
		}
		return nil
	}

	if parent == nil {
		return faults.Validation("level %d classification requires a parent", level).With(int(level))
	}
	if parent.Level != level-1 {
		return faults.Validation(
			"parent %d is level %d, level %d requires a level %d parent",
			parent.ID, parent.Level, level, level-1,
		).With(parent.ID)
	}
	if !sameFacility(facilityID, parent.FacilityID) {
		return faults.Validation("parent %d belongs to another facility", parent.ID).With(parent.ID)
	}
	return nil
}

// normalizeName trims name and maps it through aliases. A full-width space
// counts as whitespace, so a cell holding only one is blank.
func normalizeName(name string, aliases map[string]string) string {
	name = strings.TrimSpace(name)
	if alias, ok := aliases[name]; ok {
		name = strings.TrimSpace(alias)
	}
	return name
}

func sameFacility(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
