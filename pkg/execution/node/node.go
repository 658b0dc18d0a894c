// Package node defines the capability set every execution-tree operator
// implements. Spec §9 describes this as "operators share a capability
// set... represent as a sum type of operator variants with method
// dispatch, or as a small interface table — not as a deep hierarchy."
// This is that interface table: Join and any future operator variant
// satisfy it directly, with no shared base type to inherit from.
package node

import "relindex/pkg/resulttable"

// ExecutionNode is the capability set an execution-tree operator
// exposes to its parent and to the planner: a plan-string identity for
// caching, static shape queries (width, sortedness, variable/context
// columns), cost/size estimates, and the actual compute step.
type ExecutionNode interface {
	// AsString returns the canonical plan-string identity of this node,
	// used as a cache key (spec §4.5, §8 property 5).
	AsString() string

	// ResultWidth returns the number of columns this node's output
	// carries.
	ResultWidth() int

	// SortedOn returns the column this node's output is sorted by, or
	// resulttable.NotSorted.
	SortedOn() int

	// KnownEmptyResult reports whether this node's output is
	// statically known to be empty, without computing it.
	KnownEmptyResult() bool

	// ComputeResult evaluates this node, returning its materialized
	// output table.
	ComputeResult() (*resulttable.ResultTable, error)

	// CostEstimate returns this node's estimated evaluation cost, used
	// by the planner to choose between alternative plans.
	CostEstimate() float64

	// SizeEstimate returns this node's estimated output row count.
	SizeEstimate() uint64

	// SetTextLimit propagates a fulltext result-count limit down the
	// tree, for nodes that read from the fulltext index (out of scope
	// here; most nodes no-op this).
	SetTextLimit(limit int)

	// VariableColumns returns the map from SPARQL variable name to
	// output column index.
	VariableColumns() map[string]int

	// ContextVars returns the set of context variables carried by this
	// node's output.
	ContextVars() map[string]struct{}
}
