// Package qcontext implements the per-query execution context: the
// object that owns every ResultTable produced while evaluating one
// execution tree, shares them by plan-string cache key between sibling
// operators, and carries a query-level cancellation flag (spec §5). No
// operator in this module reads that flag.
package qcontext

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"relindex/pkg/logging"
	"relindex/pkg/resulttable"
)

// QueryContext is the single source of truth for everything one query
// evaluation has produced. It is created once per incoming query and
// released, with every table it owns, when the query completes.
type QueryContext struct {
	// QueryID identifies this evaluation in the log lines this context
	// emits. Operators do not receive the context and log without it.
	QueryID string

	mu      sync.RWMutex
	tables  map[string]*resulttable.ResultTable
	aborted atomic.Bool
}

// New creates a QueryContext tagged with a fresh UUID.
func New() *QueryContext {
	return &QueryContext{
		QueryID: uuid.New().String(),
		tables:  make(map[string]*resulttable.ResultTable),
	}
}

// GetOrCreate returns the cached ResultTable for planString if one
// already exists (a sibling operator with an equal plan string is
// already computing or has finished it), or registers and returns a
// freshly allocated one otherwise. The bool result reports whether an
// existing table was returned.
func (qc *QueryContext) GetOrCreate(planString string, nofColumns, sortedBy int) (*resulttable.ResultTable, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if rt, ok := qc.tables[planString]; ok {
		return rt, true
	}

	rt := resulttable.New(nofColumns, sortedBy)
	qc.tables[planString] = rt
	return rt, false
}

// Cancel sets the query-level cancellation flag reported by
// IsCancelled. Join and RelationScan do not check it; a running
// operator finishes regardless.
func (qc *QueryContext) Cancel() {
	qc.aborted.Store(true)
	logging.WithQuery(qc.QueryID).Info("query cancelled")
}

// IsCancelled reports whether Cancel has been called for this query.
func (qc *QueryContext) IsCancelled() bool {
	return qc.aborted.Load()
}

// Release drops every table this context owns. Called once the query
// completes or aborts, so tables (and any memory-mapped index bytes
// they reference indirectly through their producing operators) can be
// reclaimed together.
func (qc *QueryContext) Release() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.tables = make(map[string]*resulttable.ResultTable)
}
