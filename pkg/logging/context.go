package logging

import (
	"log/slog"

	"relindex/pkg/ids"
)

// WithRelation creates a logger with relation-id context. Use this for
// index-metadata lookups and relation-scoped index-build steps.
//
// Example:
//
//	log := logging.WithRelation(relID)
//	log.Debug("loaded relation header", "nof_elements", n)
func WithRelation(relID ids.Id) *slog.Logger {
	return GetLogger().With("rel_id", relID.String())
}

// WithBlock creates a logger with block-index context, for use inside
// BlockBasedRelationMetaData lookups and the index builder's block
// assembly loop.
//
// Example:
//
//	log := logging.WithBlock(blockIdx)
//	log.Debug("block located", "start_offset", off)
func WithBlock(blockIdx int) *slog.Logger {
	return GetLogger().With("block", blockIdx)
}

// WithQuery creates a logger with query-execution context, tagging every
// log line an operator emits while evaluating one execution tree with the
// same query id.
//
// Example:
//
//	log := logging.WithQuery(execCtx.QueryID)
//	log.Info("join finished", "rows", nof)
func WithQuery(queryID string) *slog.Logger {
	return GetLogger().With("query_id", queryID)
}

// WithOperator creates a logger with operator-plan context, for use when
// logging assertion failures: the spec requires these to carry "the
// containing operator's plan string."
//
// Example:
//
//	log := logging.WithOperator(join.AsString())
//	log.Error("join aborted", "error", err)
func WithOperator(planString string) *slog.Logger {
	return GetLogger().With("plan", planString)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("catalog")
//	log.Info("catalog opened")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context. Use this when logging
// errors to include the error in structured form.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Error("index load failed", "operation", "Load")
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
