// Package scan implements the execution-tree leaf that reads a
// relation's pair segment directly off the index's byte image using
// IndexMetaData to locate it (spec §2's "leaves read relation data
// using IndexMetaData to locate byte ranges on disk"). Everything above
// this leaf — the planner that decides which relations to scan and
// which variables their columns bind — is out of scope (spec §1).
package scan

import (
	"encoding/binary"
	"fmt"

	relerr "relindex/pkg/error"
	"relindex/pkg/ids"
	"relindex/pkg/indexmeta"
	"relindex/pkg/resulttable"
)

// RelationScan reads one relation's (lhs, rhs) pair segment out of a
// byte image (typically memory-mapped, per spec §5) into a two-column
// ResultTable sorted by lhs.
type RelationScan struct {
	meta  *indexmeta.IndexMetaData
	data  []byte
	relID ids.Id

	rmd indexmeta.RelationMetaData
}

// New constructs a RelationScan over relID. It resolves relID against
// meta immediately, so a missing relation is caught at plan-construction
// time rather than deferred to ComputeResult; the caller (the planner,
// out of scope here) is expected not to build a scan over an id it
// hasn't already validated.
func New(meta *indexmeta.IndexMetaData, data []byte, relID ids.Id) (*RelationScan, error) {
	rmd, err := meta.GetRmd(relID)
	if err != nil {
		return nil, err
	}
	return &RelationScan{meta: meta, data: data, relID: relID, rmd: rmd}, nil
}

// AsString returns this leaf's plan-string identity.
func (s *RelationScan) AsString() string {
	return fmt.Sprintf("Scan(%s)", s.relID)
}

// ResultWidth is always 2: one column for lhs, one for rhs.
func (s *RelationScan) ResultWidth() int { return 2 }

// SortedOn returns 0: the pair segment is stored sorted by lhs (spec §3).
func (s *RelationScan) SortedOn() int { return 0 }

// KnownEmptyResult reports whether the relation has zero elements.
func (s *RelationScan) KnownEmptyResult() bool {
	return s.rmd.NofElements() == 0
}

// SetTextLimit is a no-op: a plain relation scan never reads the
// fulltext index.
func (s *RelationScan) SetTextLimit(int) {}

// VariableColumns returns no bindings: naming columns after SPARQL
// variables is the planner's job, out of scope here.
func (s *RelationScan) VariableColumns() map[string]int { return map[string]int{} }

// ContextVars returns no context variables: a raw relation scan carries
// none on its own.
func (s *RelationScan) ContextVars() map[string]struct{} { return map[string]struct{}{} }

// CostEstimate approximates read cost as proportional to the number of
// pairs read.
func (s *RelationScan) CostEstimate() float64 {
	return float64(s.rmd.NofElements())
}

// SizeEstimate returns the relation's element count.
func (s *RelationScan) SizeEstimate() uint64 {
	return s.rmd.NofElements()
}

// ComputeResult decodes the pair segment into a FINISHED, sorted
// two-column ResultTable.
func (s *RelationScan) ComputeResult() (*resulttable.ResultTable, error) {
	n := s.rmd.NofElements()
	out := resulttable.New(2, 0)
	out.BeginWrite()

	if n == 0 {
		out.Finish()
		return out, nil
	}

	start := s.rmd.Full.StartFullIndex
	need := n * 2 * 8
	if start+need > uint64(len(s.data)) {
		out.Abort(relerr.New(relerr.KindIoError, "relation pair segment runs past end of index image").
			WithPlanString(s.AsString()))
		return nil, relerr.New(relerr.KindIoError, "relation pair segment runs past end of index image").
			WithPlanString(s.AsString())
	}

	for i := uint64(0); i < n; i++ {
		off := start + i*16
		lhs := ids.Id(binary.LittleEndian.Uint64(s.data[off : off+8]))
		rhs := ids.Id(binary.LittleEndian.Uint64(s.data[off+8 : off+16]))
		out.AppendRow([]ids.Id{lhs, rhs})
	}

	out.Finish()
	return out, nil
}
