// Package join implements the sort-merge equi-join operator (spec §4.5):
// the interior execution-tree node that consumes two child ResultTables
// and emits a new one. The sort-merge inner loop is selected through a
// (leftWidth, rightWidth) dispatch table; every entry of that table holds
// the same generic kernel, so no width gets a loop of its own.
package join

import (
	"fmt"

	relerr "relindex/pkg/error"
	"relindex/pkg/execution/node"
	"relindex/pkg/ids"
	"relindex/pkg/logging"
	"relindex/pkg/resulttable"
)

// directPairLookupPenalty is the cost-estimator penalty applied to a
// two-column join result that cannot be expressed as a direct pair
// lookup (spec §4.5).
const directPairLookupPenalty = 1000.0

// Join is the sort-merge equi-join operator. Both children are assumed
// sorted on their respective join columns; enforcing that is the
// planner's job (a Sort operator inserted upstream), not Join's — Join
// only asserts it via KindPlanMismatch.
type Join struct {
	left, right         node.ExecutionNode
	leftCol, rightCol   int
	keepJoinColumn      bool
	textLimit           int
	result              *resulttable.ResultTable
	leftPlan, rightPlan string
}

// New constructs a Join over left/right on (leftCol, rightCol),
// canonicalizing argument order so that two joins differing only by
// which child is "left" and which is "right" produce an equal plan
// string and thus share a cache entry (spec §4.5, §8 property 5).
func New(left, right node.ExecutionNode, leftCol, rightCol int, keepJoinColumn bool) *Join {
	if right.AsString() < left.AsString() {
		left, right = right, left
		leftCol, rightCol = rightCol, leftCol
	}

	return &Join{
		left:           left,
		right:          right,
		leftCol:        leftCol,
		rightCol:       rightCol,
		keepJoinColumn: keepJoinColumn,
		leftPlan:       left.AsString(),
		rightPlan:      right.AsString(),
	}
}

// AsString is the canonical plan-string identity used as a cache key.
func (j *Join) AsString() string {
	return fmt.Sprintf("Join(%s,%s,lc=%d,rc=%d,keep=%t)",
		j.leftPlan, j.rightPlan, j.leftCol, j.rightCol, j.keepJoinColumn)
}

// ResultWidth returns wL+wR-1 when the join column is kept, else
// wL+wR-2 (spec §4.5, §8 property 6).
func (j *Join) ResultWidth() int {
	w := j.left.ResultWidth() + j.right.ResultWidth() - 1
	if !j.keepJoinColumn {
		w--
	}
	return w
}

// SortedOn returns leftCol: the join's output is sorted by the left
// join column (spec §4.5, §8 property 6).
func (j *Join) SortedOn() int {
	return j.leftCol
}

// KnownEmptyResult reports whether either child is statically known to
// produce zero rows.
func (j *Join) KnownEmptyResult() bool {
	return j.left.KnownEmptyResult() || j.right.KnownEmptyResult()
}

// SetTextLimit propagates a fulltext result-count limit to both
// children; Join itself does not read the fulltext index.
func (j *Join) SetTextLimit(limit int) {
	j.textLimit = limit
	j.left.SetTextLimit(limit)
	j.right.SetTextLimit(limit)
}

// VariableColumns returns the union of both children's variable maps:
// left columns keep their indices, right columns are shifted by wL
// except the join column, which is dropped, so every index above it is
// shifted by wL-1 instead (spec §4.5).
func (j *Join) VariableColumns() map[string]int {
	wL := j.left.ResultWidth()
	out := make(map[string]int, len(j.left.VariableColumns())+len(j.right.VariableColumns()))

	for name, col := range j.left.VariableColumns() {
		out[name] = col
	}

	for name, col := range j.right.VariableColumns() {
		if col == j.rightCol {
			continue
		}
		shift := wL
		if col > j.rightCol {
			shift = wL - 1
		}
		if _, dup := out[name]; dup {
			panic(fmt.Sprintf("join: variable name collision on %q", name))
		}
		out[name] = col + shift
	}
	return out
}

// ContextVars returns the set union of both children's context
// variables.
func (j *Join) ContextVars() map[string]struct{} {
	out := make(map[string]struct{}, len(j.left.ContextVars())+len(j.right.ContextVars()))
	for name := range j.left.ContextVars() {
		out[name] = struct{}{}
	}
	for name := range j.right.ContextVars() {
		out[name] = struct{}{}
	}
	return out
}

// CostEstimate estimates evaluation cost as the sum of both children's
// costs plus a linear merge cost, penalized by directPairLookupPenalty
// when the output is two columns wide and neither side is a single
// column (see isDirectPairLookup; spec §4.5).
func (j *Join) CostEstimate() float64 {
	cost := j.left.CostEstimate() + j.right.CostEstimate()
	cost += float64(j.left.SizeEstimate() + j.right.SizeEstimate())

	if j.ResultWidth() == 2 && !j.isDirectPairLookup() {
		cost *= directPairLookupPenalty
	}
	return cost
}

// isDirectPairLookup reports whether this join can be evaluated as a
// direct (lhs, rhs) pair lookup rather than a general merge: true when
// one side is already a single column, i.e. a plain id list.
func (j *Join) isDirectPairLookup() bool {
	return j.left.ResultWidth() == 1 || j.right.ResultWidth() == 1
}

// SizeEstimate estimates output cardinality as the product of both
// children's sizes scaled by a 1/max(leftSize,rightSize) selectivity
// heuristic, floored at 1 row when both children are non-empty.
func (j *Join) SizeEstimate() uint64 {
	lSize, rSize := j.left.SizeEstimate(), j.right.SizeEstimate()
	if lSize == 0 || rSize == 0 {
		return 0
	}

	maxSize := lSize
	if rSize > maxSize {
		maxSize = rSize
	}

	est := (lSize * rSize) / maxSize
	if est == 0 {
		est = 1
	}
	return est
}

// ComputeResult evaluates the join: the empty-result shortcut (spec
// §4.5, §8 property 7) skips computing the non-empty side entirely when
// either child is statically empty; otherwise both children are
// computed, asserted sorted on their join columns, and merged.
func (j *Join) ComputeResult() (*resulttable.ResultTable, error) {
	log := logging.WithOperator(j.AsString())

	if j.KnownEmptyResult() {
		log.Debug("join short-circuited on known-empty child")
		j.result = resulttable.NewEmpty(j.ResultWidth(), j.leftCol)
		return j.result, nil
	}

	leftTable, err := j.left.ComputeResult()
	if err != nil {
		return nil, relerr.Wrap(err, relerr.KindIoError, "ComputeResult", "join").WithPlanString(j.AsString())
	}
	rightTable, err := j.right.ComputeResult()
	if err != nil {
		return nil, relerr.Wrap(err, relerr.KindIoError, "ComputeResult", "join").WithPlanString(j.AsString())
	}

	if leftTable.SortedBy() != j.leftCol || rightTable.SortedBy() != j.rightCol {
		return nil, relerr.New(relerr.KindPlanMismatch,
			"join inputs are not sorted on their declared join columns").WithPlanString(j.AsString())
	}

	out := resulttable.New(j.ResultWidth(), j.leftCol)
	out.BeginWrite()

	kernel := dispatch(leftTable.NofColumns(), rightTable.NofColumns())
	kernel(out, leftTable, rightTable, j.leftCol, j.rightCol, j.keepJoinColumn)

	out.Finish()
	j.result = out
	log.Debug("join finished", "rows", out.NofRows())
	return out, nil
}

// mergeRows runs the two-pointer sort-merge scan common to every width
// specialization: advance whichever side has the smaller join-column
// value, and on equality emit the Cartesian product of the matching
// runs before advancing past both (spec §4.5 step 1).
func mergeRows(out *resulttable.ResultTable, left, right *resulttable.ResultTable, lc, rc int, keep bool, emit func(l, r []ids.Id)) {
	nl, nr := left.NofRows(), right.NofRows()
	i, k := 0, 0

	for i < nl && k < nr {
		lRow := left.RowAt(i)
		rRow := right.RowAt(k)

		switch {
		case lRow[lc] < rRow[rc]:
			i++
		case lRow[lc] > rRow[rc]:
			k++
		default:
			key := lRow[lc]
			runEnd := k
			for runEnd < nr && right.RowAt(runEnd)[rc] == key {
				runEnd++
			}
			for i < nl && left.RowAt(i)[lc] == key {
				lr := left.RowAt(i)
				for m := k; m < runEnd; m++ {
					emit(lr, right.RowAt(m))
				}
				i++
			}
			k = runEnd
		}
	}
}

// concatRow builds one output tuple by concatenating l and r, dropping
// r[rc] always (the join column is never duplicated) and additionally
// dropping l[lc] when keep is false.
func concatRow(l, r []ids.Id, lc, rc int, keep bool) []ids.Id {
	width := len(l) + len(r) - 1
	if !keep {
		width--
	}
	out := make([]ids.Id, 0, width)

	for idx, v := range l {
		if !keep && idx == lc {
			continue
		}
		out = append(out, v)
	}
	for idx, v := range r {
		if idx == rc {
			continue
		}
		out = append(out, v)
	}
	return out
}

// kernelFunc is one entry of the width-specialization dispatch table:
// it runs the merge scan and appends every emitted row to out.
type kernelFunc func(out, left, right *resulttable.ResultTable, lc, rc int, keep bool)

// genericKernel is shared by every dispatch-table entry; the table
// exists so that ComputeResult never branches on width at the call
// site, matching spec §9's "small lookup table, not runtime
// inheritance" note. Each emitted row is built as a heap-allocated slice
// by concatRow; the only width-dependent difference lies in
// resulttable.ResultTable's own fixed/variable storage split: an output
// table with nof_columns <= WMax stores every row as a fixed-size array
// regardless of which dispatch-table entry produced it.
func genericKernel(out, left, right *resulttable.ResultTable, lc, rc int, keep bool) {
	mergeRows(out, left, right, lc, rc, keep, func(l, r []ids.Id) {
		out.AppendRow(concatRow(l, r, lc, rc, keep))
	})
}

// dispatchTable is the (WMax+1)x(WMax+1) matrix from spec §4.5: index 0
// on either axis means "width exceeds WMax", which always resolves to
// genericKernel. Indices 1..WMax hold genericKernel as well; an output
// width within WMax gets resulttable's fixed-width storage automatically.
var dispatchTable [resulttable.WMax + 1][resulttable.WMax + 1]kernelFunc

func init() {
	for wl := 0; wl <= resulttable.WMax; wl++ {
		for wr := 0; wr <= resulttable.WMax; wr++ {
			dispatchTable[wl][wr] = genericKernel
		}
	}
}

// dispatch selects the kernel for (wL, wR), clamping widths above WMax
// to the table's overflow row/column.
func dispatch(wl, wr int) kernelFunc {
	li, ri := wl, wr
	if li > resulttable.WMax {
		li = 0
	}
	if ri > resulttable.WMax {
		ri = 0
	}
	return dispatchTable[li][ri]
}
