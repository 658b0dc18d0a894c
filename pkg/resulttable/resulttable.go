// Package resulttable implements the materialized intermediate result
// every execution-tree operator reads from and writes to (spec §3, §4.4):
// a status-tracked, append-only tuple buffer shared by result reference
// across the operators of one query.
package resulttable

import (
	"context"
	"fmt"
	"sync"

	relerr "relindex/pkg/error"
	"relindex/pkg/ids"
)

// WMax is the widest column count that gets a fixed-width tuple
// representation. Wider tables fall back to variable-width storage.
const WMax = 5

// NotSorted is the SortedBy sentinel meaning "this table carries no
// sortedness guarantee on any column."
const NotSorted = -1

// Status is the lifecycle state of a ResultTable. Transitions are
// monotonic and one-way from Pending (spec §4.4).
type Status int

const (
	Pending Status = iota
	Computing
	Finished
	Aborted
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Computing:
		return "COMPUTING"
	case Finished:
		return "FINISHED"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// fixedRow is the backing storage for one tuple in a fixed-width table.
// Only the first NofColumns entries of a table's rows are meaningful;
// the rest are zero-filled padding, never read.
type fixedRow [WMax]ids.Id

// ResultTable is a materialized intermediate result. Storage is either
// fixed-width (nof_columns in 1..=WMax) or variable-width, selected once
// at construction and never mixed — consumers destructure by
// IsFixedWidth rather than by any runtime type assertion (spec §9's
// "tagged storage" note).
type ResultTable struct {
	mu   sync.Mutex
	cond *sync.Cond

	status     Status
	nofColumns int
	sortedBy   int

	fixedRows [][WMax]ids.Id
	varRows   [][]ids.Id

	err error
}

// New allocates an empty, PENDING result table of the given column
// count and sortedness. sortedBy is NotSorted or a valid column index.
func New(nofColumns, sortedBy int) *ResultTable {
	rt := &ResultTable{
		nofColumns: nofColumns,
		sortedBy:   sortedBy,
	}
	rt.cond = sync.NewCond(&rt.mu)
	return rt
}

// NofColumns returns the table's column count.
func (rt *ResultTable) NofColumns() int { return rt.nofColumns }

// SortedBy returns the column this table is sorted by, or NotSorted.
func (rt *ResultTable) SortedBy() int { return rt.sortedBy }

// IsFixedWidth reports whether this table uses the fixed-width tuple
// representation (nof_columns <= WMax).
func (rt *ResultTable) IsFixedWidth() bool { return rt.nofColumns <= WMax }

// Status returns the current lifecycle state under lock, so callers
// never observe a status update racing an in-flight storage write.
func (rt *ResultTable) Status() Status {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.status
}

// BeginWrite transitions PENDING -> COMPUTING. It panics if storage has
// already been populated, enforcing the "storage must be empty when a
// producer begins writing" contract (spec §4.4) — a second producer
// racing to fill the same table is a construction bug, not a runtime
// condition to recover from.
func (rt *ResultTable) BeginWrite() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if len(rt.fixedRows) != 0 || len(rt.varRows) != 0 {
		panic("resulttable: BeginWrite called on a table with existing storage")
	}
	if rt.status != Pending {
		panic(fmt.Sprintf("resulttable: BeginWrite called from status %s, want PENDING", rt.status))
	}
	rt.status = Computing
}

// AppendRow appends one tuple. row must have exactly NofColumns entries.
// Only the owning producer thread may call this, between BeginWrite and
// Finish/Abort.
func (rt *ResultTable) AppendRow(row []ids.Id) {
	if len(row) != rt.nofColumns {
		panic(fmt.Sprintf("resulttable: row width %d does not match table width %d", len(row), rt.nofColumns))
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.IsFixedWidth() {
		var fr fixedRow
		copy(fr[:], row)
		rt.fixedRows = append(rt.fixedRows, fr)
	} else {
		cp := append([]ids.Id(nil), row...)
		rt.varRows = append(rt.varRows, cp)
	}
}

// Finish transitions COMPUTING -> FINISHED. All storage writes must be
// complete before this call: the mutex acquired here is what makes them
// visible to readers waiting in Wait (spec §5's publish contract).
func (rt *ResultTable) Finish() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.status = Finished
	rt.cond.Broadcast()
}

// Abort transitions the table to ABORTED, recording the error that
// caused it (a QueryError for the taxonomy in spec §7, or nil for plain
// cancellation).
func (rt *ResultTable) Abort(err error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.status = Aborted
	rt.err = err
	rt.cond.Broadcast()
}

// Err returns the error recorded by Abort, if any.
func (rt *ResultTable) Err() error { return rt.err }

// Wait blocks until the table reaches FINISHED or ABORTED, or ctx is
// canceled. It returns the terminal status and, if ABORTED, the error
// recorded by Abort. If ctx is canceled first, it returns the status at
// that moment together with a new QueryError of KindQueryAborted.
func (rt *ResultTable) Wait(ctx context.Context) (Status, error) {
	done := make(chan Status, 1)
	go func() {
		rt.mu.Lock()
		for rt.status != Finished && rt.status != Aborted {
			rt.cond.Wait()
		}
		s := rt.status
		rt.mu.Unlock()
		done <- s
	}()

	select {
	case s := <-done:
		if s == Aborted {
			return s, rt.Err()
		}
		return s, nil
	case <-ctx.Done():
		return rt.Status(), relerr.New(relerr.KindQueryAborted, "wait canceled")
	}
}

// NofRows returns the number of tuples currently stored. Only
// meaningful once the table has reached FINISHED.
func (rt *ResultTable) NofRows() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.IsFixedWidth() {
		return len(rt.fixedRows)
	}
	return len(rt.varRows)
}

// RowAt returns row i as a freshly allocated slice of length
// NofColumns. Panics on out-of-range i, matching the append-only,
// random-access contract of a finished table.
func (rt *ResultTable) RowAt(i int) []ids.Id {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.IsFixedWidth() {
		fr := rt.fixedRows[i]
		return append([]ids.Id(nil), fr[:rt.nofColumns]...)
	}
	return append([]ids.Id(nil), rt.varRows[i]...)
}

// Rows returns every row as freshly allocated slices, in storage order.
func (rt *ResultTable) Rows() [][]ids.Id {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.IsFixedWidth() {
		out := make([][]ids.Id, len(rt.fixedRows))
		for i, fr := range rt.fixedRows {
			out[i] = append([]ids.Id(nil), fr[:rt.nofColumns]...)
		}
		return out
	}

	out := make([][]ids.Id, len(rt.varRows))
	for i, r := range rt.varRows {
		out[i] = append([]ids.Id(nil), r...)
	}
	return out
}

// KnownEmpty reports whether the table is FINISHED with zero rows. It
// inspects an already materialized table; Join's known-empty shortcut
// (spec §4.5) is decided by its children's KnownEmptyResult instead.
func (rt *ResultTable) KnownEmpty() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.status != Finished {
		return false
	}
	if rt.IsFixedWidth() {
		return len(rt.fixedRows) == 0
	}
	return len(rt.varRows) == 0
}

// NewEmpty returns a FINISHED, zero-row table of the given width — the
// shortcut Join uses when a child's KnownEmptyResult() holds (spec
// §4.5, §9: only the fixed-width vector is
// preallocated when width <= WMax, matching the source's own asymmetry).
func NewEmpty(nofColumns, sortedBy int) *ResultTable {
	rt := New(nofColumns, sortedBy)
	rt.BeginWrite()
	if rt.IsFixedWidth() {
		rt.fixedRows = [][WMax]ids.Id{}
	}
	rt.Finish()
	return rt
}
