// Command relindexd is the out-of-scope server entry point described by
// spec §6: it parses -p/-o, opens the named ontology's index through the
// catalog, and prints its statistics. No TCP server loop is implemented.
// Everything below main is the small slice of that collaborator relindex
// actually needs to exercise IndexMetaData and pkg/catalog from outside
// the core.
package main

import (
	"flag"
	"fmt"
	"os"

	"relindex/pkg/catalog"
	"relindex/pkg/indexmeta"
	"relindex/pkg/logging"
	"relindex/pkg/stats"
)

type config struct {
	port         int
	ontologyBase string
	catalogPath  string
}

func main() {
	logging.InitDefault()

	cfg, err := parseArguments()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logging.WithComponent("relindexd").Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func parseArguments() (config, error) {
	fs := flag.NewFlagSet("relindexd", flag.ContinueOnError)
	port := fs.Int("p", 0, "TCP port to listen on")
	ontologyBase := fs.String("o", "", "ontology basename to serve")
	catalogPath := fs.String("catalog", "relindex.catalog", "path to the ontology catalog database")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return config{}, err
	}

	if *port == 0 {
		return config{}, fmt.Errorf("relindexd: -p <port> is required")
	}
	if *ontologyBase == "" {
		return config{}, fmt.Errorf("relindexd: -o <ontology-basename> is required")
	}

	return config{port: *port, ontologyBase: *ontologyBase, catalogPath: *catalogPath}, nil
}

func run(cfg config) error {
	cat, err := catalog.Open(cfg.catalogPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer cat.Close()

	entry, found, err := cat.Lookup(cfg.ontologyBase)
	if err != nil {
		return fmt.Errorf("looking up ontology %q: %w", cfg.ontologyBase, err)
	}
	if !found {
		return fmt.Errorf("ontology %q is not registered in %s", cfg.ontologyBase, cfg.catalogPath)
	}

	data, err := os.ReadFile(entry.IndexPath)
	if err != nil {
		return fmt.Errorf("reading index file %s: %w", entry.IndexPath, err)
	}

	meta := indexmeta.Load(data)
	logging.WithComponent("relindexd").Info("index opened",
		"ontology", cfg.ontologyBase, "port", cfg.port, "path", entry.IndexPath)
	fmt.Print(stats.Format(meta.Statistics()))

	// The TCP accept loop, SPARQL parsing, and query planning that would
	// run from here are out of scope (spec §1); relindexd's job ends at
	// having a validated, ready-to-query IndexMetaData in hand.
	return nil
}
