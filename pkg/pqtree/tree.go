package pqtree

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultArrangementCap bounds arrangement enumeration, since a P-node with n children alone admits n! orderings
const DefaultArrangementCap = 1000

var (
	ErrDuplicateLeaf     = errors.New("leaf label appears more than once")
	ErrEmptyInternalNode = errors.New("internal node has no children")
)

type NodeKind int

const (
	PNode NodeKind = iota // Children can be reordered in any way
	QNode                 // Children order can only be reversed
	Leaf                  // Time-slot identifier
)

func (kind NodeKind) String() string {
	switch kind {
	case PNode:
		return "P"
	case QNode:
		return "Q"
	case Leaf:
		return "leaf"
	default:
		return "unknown"
	}
}

const noNode = -1

type node struct {
	kind     NodeKind
	label    string
	children []int
	parent   int // Navigation only, noNode for the root
}

// Tree is a PQ-tree stored as an arena: nodes address each other by index, so the only owner of a node is the arena itself
type Tree struct {
	nodes  []node
	root   int
	leaves map[string]int
}

func New() *Tree {
	return &Tree{root: noNode}
}

// Build discards the current tree and creates a P-node root holding one leaf per identifier in the given order
func (tree *Tree) Build(universe []string) {
	tree.reset()
	tree.root = tree.add(node{kind: PNode, parent: noNode})

	for _, label := range universe {
		// Duplicates are dropped to keep leaves unique per identifier
		if _, ok := tree.leaves[label]; ok {
			continue
		}
		tree.attach(tree.root, node{kind: Leaf, label: label})
	}
}

// BuildShape discards the current tree and loads the given nested layout
func (tree *Tree) BuildShape(shape Shape) error {
	tree.reset()
	root, err := tree.load(shape, noNode)
	if err != nil {
		tree.reset()
		return err
	}
	tree.root = root
	return nil
}

func (tree *Tree) Built() bool {
	return tree.root != noNode
}

// Len returns the number of leaves
func (tree *Tree) Len() int {
	return len(tree.leaves)
}

func (tree *Tree) Contains(label string) bool {
	_, ok := tree.leaves[label]
	return ok
}

// Frontier returns the leaf labels from left to right
func (tree *Tree) Frontier() []string {
	if !tree.Built() {
		return nil
	}

	frontier := make([]string, 0, len(tree.leaves))
	stack := []int{tree.root}
	for len(stack) > 0 {
		current := tree.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if current.kind == Leaf {
			frontier = append(frontier, current.label)
			continue
		}
		// Push in reverse so the leftmost child is visited first
		for i := len(current.children) - 1; i >= 0; i-- {
			stack = append(stack, current.children[i])
		}
	}
	return frontier
}

// Depth returns the number of edges between the leaf and the root
func (tree *Tree) Depth(label string) (int, bool) {
	index, ok := tree.leaves[label]
	if !ok {
		return 0, false
	}

	depth := 0
	for tree.nodes[index].parent != noNode {
		index = tree.nodes[index].parent
		depth++
	}
	return depth, true
}

func (tree *Tree) String() string {
	if !tree.Built() {
		return ""
	}
	var builder strings.Builder
	tree.write(&builder, tree.root)
	return builder.String()
}

func (tree *Tree) write(builder *strings.Builder, index int) {
	current := tree.nodes[index]
	if current.kind == Leaf {
		builder.WriteString(current.label)
		return
	}

	builder.WriteString(current.kind.String())
	builder.WriteByte('[')
	for i, child := range current.children {
		if i > 0 {
			builder.WriteByte(' ')
		}
		tree.write(builder, child)
	}
	builder.WriteByte(']')
}

func (tree *Tree) reset() {
	tree.nodes = tree.nodes[:0]
	tree.root = noNode
	tree.leaves = make(map[string]int)
}

func (tree *Tree) add(n node) int {
	tree.nodes = append(tree.nodes, n)
	index := len(tree.nodes) - 1
	if n.kind == Leaf {
		tree.leaves[n.label] = index
	}
	return index
}

func (tree *Tree) attach(parent int, child node) int {
	child.parent = parent
	index := tree.add(child)
	tree.nodes[parent].children = append(tree.nodes[parent].children, index)
	return index
}

func (tree *Tree) load(shape Shape, parent int) (int, error) {
	if shape.Kind == Leaf {
		if _, ok := tree.leaves[shape.Label]; ok {
			return noNode, fmt.Errorf("%w: %q", ErrDuplicateLeaf, shape.Label)
		}
		return tree.add(node{kind: Leaf, label: shape.Label, parent: parent}), nil
	}

	if len(shape.Children) == 0 {
		return noNode, fmt.Errorf("%w: %v-node", ErrEmptyInternalNode, shape.Kind)
	}

	index := tree.add(node{kind: shape.Kind, parent: parent})
	children := make([]int, 0, len(shape.Children))
	for _, childShape := range shape.Children {
		child, err := tree.load(childShape, index)
		if err != nil {
			return noNode, err
		}
		children = append(children, child)
	}
	// Assigned after recursion since appends to the arena may have moved the slice
	tree.nodes[index].children = children
	return index, nil
}
