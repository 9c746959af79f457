package sql

// TreeIdentity discriminates whether a tree-rewriting function actually
// changed its input, independent of the error result. It is the
// "Transformed{Yes|No}" signal from the design notes: NewTree lets a
// fixpoint driver know to run another round, and SameTree lets it reuse
// the input node instead of rebuilding an identical one.
type TreeIdentity bool

const (
	SameTree TreeIdentity = false
	NewTree  TreeIdentity = true
)

// AndThen combines two TreeIdentity results from a sequence of rewrites
// applied to the same node: the combination changed something if either
// step did.
func (t TreeIdentity) AndThen(other TreeIdentity) TreeIdentity {
	return TreeIdentity(bool(t) || bool(other))
}
