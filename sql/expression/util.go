package expression

import "fmt"

// withNoChildren implements WithChildren for leaf expressions: it is an
// error to pass any children, and a leaf always returns itself unchanged.
func withNoChildren(self Expression, newChildren []Expression) (Expression, error) {
	if len(newChildren) != 0 {
		return nil, fmt.Errorf("%T: expected 0 children, got %d", self, len(newChildren))
	}
	return self, nil
}

func expectChildren(self Expression, newChildren []Expression, n int) error {
	if len(newChildren) != n {
		return fmt.Errorf("%T: expected %d children, got %d", self, n, len(newChildren))
	}
	return nil
}
