package pqtree

import "slices"

type mark int

const (
	unmarked mark = iota
	marked
	failed
)

// Reduce reorders the tree so that the target leaves form a contiguous run of the frontier.
// Only existing children are reordered: mixed P-nodes move their marked children first and mixed
// Q-nodes may only be reversed. It returns false when a Q-node has a non-contiguous marked run, in
// which case the tree may already have been partially reordered. Identifiers absent from the tree are unmarked.
func (tree *Tree) Reduce(target []string) bool {
	if !tree.Built() {
		return false
	}

	targetSet := make(map[string]bool, len(target))
	for _, label := range target {
		targetSet[label] = true
	}

	return tree.reduce(tree.root, targetSet) != failed
}

func (tree *Tree) reduce(index int, targetSet map[string]bool) mark {
	current := &tree.nodes[index]

	if current.kind == Leaf {
		if targetSet[current.label] {
			return marked
		}
		return unmarked
	}

	childMarks := make([]mark, len(current.children))
	hasMarked, hasUnmarked := false, false
	for i, child := range current.children {
		childMark := tree.reduce(child, targetSet)
		if childMark == failed {
			return failed
		}
		childMarks[i] = childMark
		hasMarked = hasMarked || childMark == marked
		hasUnmarked = hasUnmarked || childMark == unmarked
	}

	// Recursion does not grow the arena, so current is still valid here
	switch {
	case !hasMarked:
		return unmarked
	case !hasUnmarked:
		return marked
	}

	switch current.kind {
	case PNode:
		reorderMarkedFirst(current.children, childMarks)
		return marked
	case QNode:
		return reverseTowardsEnd(current.children, childMarks)
	default:
		return failed
	}
}

// reorderMarkedFirst moves marked children ahead of unmarked ones, keeping their relative order
func reorderMarkedFirst(children []int, childMarks []mark) {
	reordered := make([]int, 0, len(children))
	for i, child := range children {
		if childMarks[i] == marked {
			reordered = append(reordered, child)
		}
	}
	for i, child := range children {
		if childMarks[i] != marked {
			reordered = append(reordered, child)
		}
	}
	copy(children, reordered)
}

func reverseTowardsEnd(children []int, childMarks []mark) mark {
	first, last := -1, -1
	for i, childMark := range childMarks {
		if childMark == marked {
			if first == -1 {
				first = i
			}
			last = i
		}
	}

	for i := first; i <= last; i++ {
		if childMarks[i] != marked {
			return failed
		}
	}

	if first == 0 || last == len(children)-1 {
		return marked
	}

	// The run is closer to the right end
	if len(children)-1-last < first {
		slices.Reverse(children)
	}
	return marked
}
