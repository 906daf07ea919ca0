package ast

import "fmt"

// WalkFunc is called for each template child with its parent. A non-nil error
// stops the walk.
type WalkFunc func(child TemplateChildNode, parent ParentNode) error

// Walk visits the template children of parent depth-first in document order
func Walk(parent ParentNode, fn WalkFunc) error {
	for _, child := range parent.ChildNodes() {
		if err := fn(child, parent); err != nil {
			return err
		}
		switch n := child.(type) {
		case *ElementNode:
			if err := Walk(n, fn); err != nil {
				return err
			}
		case *TextNode, *InterpolationNode:
		default:
			panic(&InvariantError{Node: parent, Msg: fmt.Sprintf("unexpected child %T", child)})
		}
	}
	return nil
}
