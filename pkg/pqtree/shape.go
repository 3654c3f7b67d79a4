package pqtree

// Shape describes a nested P/Q/leaf layout to be loaded by BuildShape
type Shape struct {
	Kind     NodeKind
	Label    string // Only meaningful for leaves
	Children []Shape
}

func NewP(children ...Shape) Shape {
	return Shape{Kind: PNode, Children: children}
}

func NewQ(children ...Shape) Shape {
	return Shape{Kind: QNode, Children: children}
}

func NewLeaf(label string) Shape {
	return Shape{Kind: Leaf, Label: label}
}

// Leaves wraps each label into a leaf shape
func Leaves(labels ...string) []Shape {
	shapes := make([]Shape, 0, len(labels))
	for _, label := range labels {
		shapes = append(shapes, NewLeaf(label))
	}
	return shapes
}
