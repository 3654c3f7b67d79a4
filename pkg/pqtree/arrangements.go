package pqtree

import "slices"

// Arrangements enumerates the frontiers reachable by permuting P-node children and reversing Q-node children.
// Enumeration stops once limit arrangements have been produced. An empty tree has no arrangements.
func (tree *Tree) Arrangements(limit int) [][]string {
	if !tree.Built() || tree.Len() == 0 || limit <= 0 {
		return nil
	}

	arrangements := tree.arrangements(tree.root, limit)
	if len(arrangements) == 0 {
		arrangements = append(arrangements, tree.Frontier())
	}
	return arrangements
}

func (tree *Tree) arrangements(index, limit int) [][]string {
	current := tree.nodes[index]

	switch current.kind {
	case Leaf:
		return [][]string{{current.label}}
	case PNode, QNode:
	default:
		return nil
	}

	if len(current.children) == 0 {
		return [][]string{{}}
	}

	childArrangements := make([][][]string, len(current.children))
	for i, child := range current.children {
		childArrangements[i] = tree.arrangements(child, limit)
	}

	result := make([][]string, 0)
	selection := make([]int, len(current.children)) // Chosen arrangement per child
	for {
		if current.kind == PNode {
			order := make([]int, len(current.children))
			for i := range order {
				order[i] = i
			}
			for {
				result = append(result, concatenate(childArrangements, selection, order))
				if len(result) >= limit || !nextPermutation(order) {
					break
				}
			}
		} else {
			forward := concatenate(childArrangements, selection, nil)
			result = append(result, forward)

			// Children keep their own internal orientation, only their sequence is reversed
			reverse := concatenateReversed(childArrangements, selection)
			if len(result) < limit && !slices.Equal(forward, reverse) {
				result = append(result, reverse)
			}
		}

		if len(result) >= limit || !advance(selection, childArrangements) {
			return result
		}
	}
}

// concatenate joins the selected child arrangements following order, or child order when order is nil
func concatenate(childArrangements [][][]string, selection, order []int) []string {
	arrangement := make([]string, 0)
	for position := range selection {
		child := position
		if order != nil {
			child = order[position]
		}
		arrangement = append(arrangement, childArrangements[child][selection[child]]...)
	}
	return arrangement
}

func concatenateReversed(childArrangements [][][]string, selection []int) []string {
	arrangement := make([]string, 0)
	for child := len(selection) - 1; child >= 0; child-- {
		arrangement = append(arrangement, childArrangements[child][selection[child]]...)
	}
	return arrangement
}

// advance moves the selection odometer one step, reporting false once every combination was visited
func advance(selection []int, childArrangements [][][]string) bool {
	for i := range selection {
		selection[i]++
		if selection[i] < len(childArrangements[i]) {
			return true
		}
		selection[i] = 0
	}
	return false
}

// nextPermutation rearranges order into its lexicographic successor, reporting false when order was the last one
func nextPermutation(order []int) bool {
	pivot := len(order) - 2
	for pivot >= 0 && order[pivot] >= order[pivot+1] {
		pivot--
	}
	if pivot < 0 {
		return false
	}

	successor := len(order) - 1
	for order[successor] <= order[pivot] {
		successor--
	}
	order[pivot], order[successor] = order[successor], order[pivot]
	slices.Reverse(order[pivot+1:])
	return true
}
