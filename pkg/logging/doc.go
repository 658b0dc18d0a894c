// Package logging provides a process-wide structured logger for relindex.
//
// The package wraps [log/slog] behind a handler that encodes records as
// logfmt (via github.com/go-logfmt/logfmt) rather than slog's built-in
// text/JSON handlers, so log lines stay grep-friendly across the index
// build, the catalog, and the query-execution tree. All subsystems should
// obtain a logger through this package rather than constructing their own
// slog.Logger values, so that level and output destination are controlled
// from a single place.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup,
// before any goroutines that might call GetLogger are spawned:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level logfmt lines to stdout.
//
// # Retrieving the logger
//
//	logger := logging.GetLogger()
//	logger.Info("index opened", "relations", n)
//
// If GetLogger is called before Init, a default stdout logger is created
// lazily (via sync.Once) so that packages that log during init are safe.
//
// # Context helpers
//
// Several helpers return child loggers pre-populated with structured fields
// that matter to relindex's operators:
//
//	log := logging.WithRelation(relID)  // adds rel_id field
//	log := logging.WithBlock(idx)       // adds block field
//	log := logging.WithQuery(queryID)   // adds query_id field
//	log := logging.WithComponent(name)  // adds component field
package logging
