package join

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relindex/pkg/ids"
	"relindex/pkg/resulttable"
)

func idRow(vs ...int) []ids.Id {
	row := make([]ids.Id, len(vs))
	for i, v := range vs {
		row[i] = ids.Id(v)
	}
	return row
}

func TestJoin_S3_SortMergeBasic(t *testing.T) {
	left := newMockLeaf("L", 2, 0, [][]ids.Id{
		idRow(1, 100), idRow(2, 101), idRow(2, 102), idRow(3, 103),
	})
	right := newMockLeaf("R", 2, 0, [][]ids.Id{
		idRow(1, 900), idRow(2, 901), idRow(4, 902),
	})

	j := New(left, right, 0, 0, true)
	out, err := j.ComputeResult()
	require.NoError(t, err)

	assert.Equal(t, 0, out.SortedBy())
	rows := out.Rows()
	want := [][]ids.Id{idRow(1, 100, 900), idRow(2, 101, 901), idRow(2, 102, 901)}
	assert.Equal(t, want, rows)
}

func TestJoin_S4_EmptyShortCircuit(t *testing.T) {
	left := newMockLeaf("L", 2, 0, nil)
	right := newMockLeaf("R", 2, 0, [][]ids.Id{idRow(1, 2)})

	j := New(left, right, 0, 0, true)
	out, err := j.ComputeResult()
	require.NoError(t, err)

	assert.Equal(t, resulttable.Finished, out.Status())
	assert.Equal(t, 0, out.NofRows())
	assert.Equal(t, j.ResultWidth(), out.NofColumns())
}

func TestJoin_Property6_ResultWidth(t *testing.T) {
	left := newMockLeaf("L", 3, 0, nil)
	right := newMockLeaf("R", 4, 0, nil)

	keep := New(left, right, 0, 0, true)
	assert.Equal(t, 3+4-1, keep.ResultWidth())

	drop := New(left, right, 0, 0, false)
	assert.Equal(t, 3+4-2, drop.ResultWidth())
}

func TestJoin_S5_WidthFiveFallsThroughToVariableKernel(t *testing.T) {
	left := newMockLeaf("L", 5, 0, [][]ids.Id{
		idRow(1, 10, 11, 12, 13),
	})
	right := newMockLeaf("R", 5, 0, [][]ids.Id{
		idRow(1, 20, 21, 22, 23),
	})

	j := New(left, right, 0, 0, true)
	assert.Equal(t, 9, j.ResultWidth())

	out, err := j.ComputeResult()
	require.NoError(t, err)
	require.Equal(t, 1, out.NofRows())
	assert.False(t, out.IsFixedWidth())
	assert.Equal(t, idRow(1, 10, 11, 12, 13, 20, 21, 22, 23), out.RowAt(0))
}

func TestJoin_Property5_Canonicalization(t *testing.T) {
	a := newMockLeaf("A", 2, 0, [][]ids.Id{idRow(1, 100)})
	b := newMockLeaf("B", 2, 0, [][]ids.Id{idRow(1, 200)})

	j1 := New(a, b, 0, 0, true)
	j2 := New(b, a, 0, 0, true)

	assert.Equal(t, j1.AsString(), j2.AsString())

	out1, err := j1.ComputeResult()
	require.NoError(t, err)
	out2, err := j2.ComputeResult()
	require.NoError(t, err)

	assert.Equal(t, out1.Rows(), out2.Rows())
}

func TestJoin_KeepFalse_DropsBothJoinColumns(t *testing.T) {
	left := newMockLeaf("L", 2, 0, [][]ids.Id{idRow(1, 100)})
	right := newMockLeaf("R", 2, 0, [][]ids.Id{idRow(1, 900)})

	j := New(left, right, 0, 0, false)
	out, err := j.ComputeResult()
	require.NoError(t, err)

	assert.Equal(t, idRow(100, 900), out.RowAt(0))
}

func TestJoin_VariableColumns_ShiftAndDrop(t *testing.T) {
	left := &mockLeaf{name: "L", width: 2, sortedBy: 0}
	left.rows = [][]ids.Id{}
	right := &mockLeaf{name: "R", width: 3, sortedBy: 1}
	right.rows = [][]ids.Id{}

	// Left keeps ?a at col 0, ?b at col 1. Right binds ?b (join col) at
	// col 1, ?c at col 0, ?d at col 2.
	leftVars := map[string]int{"a": 0, "b": 1}
	rightVars := map[string]int{"c": 0, "b": 1, "d": 2}

	lm := &varsLeaf{mockLeaf: left, vars: leftVars}
	rm := &varsLeaf{mockLeaf: right, vars: rightVars}

	j := New(lm, rm, 1, 1, true)
	got := j.VariableColumns()

	// wL = 2. Right col 0 (< rc=1) shifts by wL=2 -> 2. Right col 2 (>
	// rc=1) shifts by wL-1=1 -> 3. The join column (rc=1) is dropped.
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}, got)
}

// varsLeaf overrides VariableColumns on top of mockLeaf for the shift
// test above, since AsString must still canonicalize consistently.
type varsLeaf struct {
	*mockLeaf
	vars map[string]int
}

func (v *varsLeaf) VariableColumns() map[string]int { return v.vars }

func TestJoin_Fuzz_SortMergeMatchesNestedLoop(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		wl := 1 + rng.Intn(3)
		wr := 1 + rng.Intn(3)
		lc := rng.Intn(wl)
		rc := rng.Intn(wr)

		leftRows := randomSortedRows(rng, wl, lc, 5+rng.Intn(10))
		rightRows := randomSortedRows(rng, wr, rc, 5+rng.Intn(10))

		expected := nestedLoopJoin(leftRows, rightRows, lc, rc, true)

		left := newMockLeaf(fmt.Sprintf("L%d", trial), wl, lc, leftRows)
		right := newMockLeaf(fmt.Sprintf("R%d", trial), wr, rc, rightRows)

		j := New(left, right, lc, rc, true)
		out, err := j.ComputeResult()
		require.NoError(t, err)

		assert.ElementsMatch(t, expected, out.Rows(), "trial %d", trial)
	}
}

func randomSortedRows(rng *rand.Rand, width, joinCol, n int) [][]ids.Id {
	rows := make([][]ids.Id, n)
	for i := range rows {
		row := make([]ids.Id, width)
		for c := range row {
			row[c] = ids.Id(rng.Intn(5))
		}
		rows[i] = row
	}
	sort.Slice(rows, func(i, k int) bool { return rows[i][joinCol] < rows[k][joinCol] })
	return rows
}

// nestedLoopJoin is the O(n*m) reference implementation property 8 fuzzes
// the width-specialized sort-merge kernel against.
func nestedLoopJoin(left, right [][]ids.Id, lc, rc int, keep bool) [][]ids.Id {
	var out [][]ids.Id
	for _, l := range left {
		for _, r := range right {
			if l[lc] != r[rc] {
				continue
			}
			out = append(out, concatRow(l, r, lc, rc, keep))
		}
	}
	return out
}
