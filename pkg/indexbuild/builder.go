// Package indexbuild is the forward-only write path implied by
// IndexMetaData's lifecycle note (spec §3: "created empty during index
// build; each add call inserts one relation record"). It exists because
// the distilled spec only describes the resulting data structure; tests
// and any tooling that constructs an index need something to call.
package indexbuild

import (
	"github.com/RoaringBitmap/roaring/roaring64"

	"relindex/pkg/ids"
	"relindex/pkg/indexmeta"
	"relindex/pkg/logging"
)

// Builder assembles an IndexMetaData one relation at a time. It also
// tracks the set of distinct block first-lhs ids seen across every
// relation added so far, using a roaring64.Bitmap rather than a Go map:
// lhs streams arrive sorted during a real build, and a sorted uint64
// stream compresses far better as a bitmap than as a hash set.
type Builder struct {
	meta    *indexmeta.IndexMetaData
	seenLhs *roaring64.Bitmap
	nofAdds int
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{
		meta:    indexmeta.New(),
		seenLhs: roaring64.NewBitmap(),
	}
}

// Add records one relation's metadata. blocks is ignored when full has
// no block index (mirrors IndexMetaData.Add).
func (b *Builder) Add(full indexmeta.FullRelationMetaData, blocks indexmeta.BlockBasedRelationMetaData) {
	b.meta.Add(full, blocks)
	b.nofAdds++

	if full.HasBlocks() {
		for _, blk := range blocks.Blocks {
			b.seenLhs.Add(uint64(blk.FirstLhs))
		}
	}

	logging.WithRelation(full.RelID).Debug("builder recorded relation", "total_added", b.nofAdds)
}

// DistinctLhsCount returns the number of distinct block first-lhs ids
// observed across every block-based relation added so far.
func (b *Builder) DistinctLhsCount() uint64 {
	return b.seenLhs.GetCardinality()
}

// SeenLhs reports whether lhs was the first lhs of some block in any
// relation added so far. Mostly useful for build-time sanity checks and
// tests; query-time lookups go through BlockBasedRelationMetaData
// directly.
func (b *Builder) SeenLhs(lhs ids.Id) bool {
	return b.seenLhs.Contains(uint64(lhs))
}

// Finish returns the assembled, ready-to-serialize IndexMetaData. The
// returned value is the Builder's own, not a copy, so Add must not be
// called afterwards; DistinctLhsCount and SeenLhs stay valid.
func (b *Builder) Finish() *indexmeta.IndexMetaData {
	logging.WithComponent("indexbuild").Info("index build finished",
		"relations", b.nofAdds, "distinct_lhs", b.seenLhs.GetCardinality())
	return b.meta
}
