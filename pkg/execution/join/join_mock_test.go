package join

import (
	"relindex/pkg/ids"
	"relindex/pkg/resulttable"
)

// mockLeaf is a fixed ExecutionNode wrapping a precomputed, already
// sorted set of rows — a stand-in for a real relindex leaf (e.g.
// pkg/execution/scan.RelationScan) in tests that only need to exercise
// Join's own logic.
type mockLeaf struct {
	name     string
	rows     [][]ids.Id
	width    int
	sortedBy int
}

func newMockLeaf(name string, width, sortedBy int, rows [][]ids.Id) *mockLeaf {
	return &mockLeaf{name: name, rows: rows, width: width, sortedBy: sortedBy}
}

func (m *mockLeaf) AsString() string        { return m.name }
func (m *mockLeaf) ResultWidth() int        { return m.width }
func (m *mockLeaf) SortedOn() int           { return m.sortedBy }
func (m *mockLeaf) KnownEmptyResult() bool  { return len(m.rows) == 0 }
func (m *mockLeaf) CostEstimate() float64   { return float64(len(m.rows)) }
func (m *mockLeaf) SizeEstimate() uint64    { return uint64(len(m.rows)) }
func (m *mockLeaf) SetTextLimit(int)        {}
func (m *mockLeaf) VariableColumns() map[string]int {
	return map[string]int{}
}
func (m *mockLeaf) ContextVars() map[string]struct{} {
	return map[string]struct{}{}
}

func (m *mockLeaf) ComputeResult() (*resulttable.ResultTable, error) {
	if len(m.rows) == 0 {
		return resulttable.NewEmpty(m.width, m.sortedBy), nil
	}

	rt := resulttable.New(m.width, m.sortedBy)
	rt.BeginWrite()
	for _, r := range m.rows {
		rt.AppendRow(r)
	}
	rt.Finish()
	return rt, nil
}
