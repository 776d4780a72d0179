package interp

// execKind tags how a statement (or block of statements) finished: the
// explicit `Normal | Return(v) | Break` result variant spec.md §9
// prescribes in place of the teacher lineage's exception-based control
// flow. Never observable outside this package (spec.md §5).
type execKind int

const (
	execNormal execKind = iota
	execBreak
	execReturn
)

// execResult is what executeStmt/executeBlock return alongside an
// error: which of Normal/Break/Return occurred, and the return value
// if any.
type execResult struct {
	kind  execKind
	value interface{}
}

var normalResult = execResult{kind: execNormal}
