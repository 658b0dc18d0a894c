// Package stats renders IndexMetaData.Statistics() as the human-readable
// report described in spec §6: numbers grouped with a thousand-separator
// facet, the way relindex's collaborating CLI formats output for an
// en_US.utf8 locale.
package stats

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"relindex/pkg/indexmeta"
)

// printer is a package-level American-English printer: relindex only
// ever installs the en_US.utf8 locale (spec §6), so there is no runtime
// selection to make.
var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders s as a multi-line, human-readable summary with
// thousand-grouped integers, matching the report an operator would print
// after opening an index.
func Format(s indexmeta.Stats) string {
	var b strings.Builder

	printer.Fprintf(&b, "relations:              %d\n", s.NofRelations)
	printer.Fprintf(&b, "relations with blocks:  %d\n", s.NofRelationsWithBlocks)
	printer.Fprintf(&b, "blocks total:           %d\n", s.NofBlocksTotal)
	printer.Fprintf(&b, "on-disk bytes:          %d\n", s.OnDiskBytes)
	printer.Fprintf(&b, "theoretical triple bytes: %d\n", s.TheoreticalTripleBytes)

	if s.OnDiskBytes > 0 {
		ratio := float64(s.TheoreticalTripleBytes) / float64(s.OnDiskBytes)
		printer.Fprintf(&b, "compression vs. flat triples: %.2fx\n", ratio)
	}

	return b.String()
}
