package indexmeta

import (
	"encoding/binary"

	relerr "relindex/pkg/error"
	"relindex/pkg/ids"
	"relindex/pkg/logging"
	"relindex/pkg/presence"
)

// IndexMetaData is the read-only, in-memory aggregate over every
// relation's on-disk layout. It is built once during index construction
// (see pkg/indexbuild), serialized, and reopened read-only by query
// servers; every lookup here is a pure function over immutable state
// (spec §5).
type IndexMetaData struct {
	full   map[ids.Id]FullRelationMetaData
	blocks map[ids.Id]BlockBasedRelationMetaData

	// offsetAfter is the maximum end offset of any inserted relation,
	// updated incrementally by Add rather than recomputed on read.
	offsetAfter uint64

	// present is a compact membership filter over the keys of full,
	// consulted by RelationExists before the map lookup. Add discards
	// it, and ensurePresence rebuilds it on the next RelationExists.
	present *presence.Filter
}

// New creates an empty IndexMetaData, as during index build (spec §3:
// "created empty during index build").
func New() *IndexMetaData {
	return &IndexMetaData{
		full:   make(map[ids.Id]FullRelationMetaData),
		blocks: make(map[ids.Id]BlockBasedRelationMetaData),
	}
}

// Add inserts one relation's records. If full.HasBlocks() is set, block
// must be the matching block index and is inserted under the same key;
// otherwise block is ignored. OffsetAfter is updated to the max of its
// current value and this relation's computed end offset.
func (m *IndexMetaData) Add(full FullRelationMetaData, block BlockBasedRelationMetaData) {
	m.full[full.RelID] = full

	var expectedEnd uint64
	if full.HasBlocks() {
		m.blocks[full.RelID] = block
		expectedEnd = block.OffsetAfter
	} else {
		expectedEnd = full.StartFullIndex + full.NofBytesForFulltextIndex()
	}

	if expectedEnd > m.offsetAfter {
		m.offsetAfter = expectedEnd
	}

	m.present = nil // stale; rebuilt lazily by RelationExists
	logging.WithRelation(full.RelID).Debug("relation added to index metadata",
		"nof_elements", full.NofElements(), "has_blocks", full.HasBlocks())
}

// OffsetAfter returns the end-of-index byte offset accumulated so far.
func (m *IndexMetaData) OffsetAfter() uint64 {
	return m.offsetAfter
}

func (m *IndexMetaData) ensurePresence() {
	if m.present != nil {
		return
	}
	known := make([]ids.Id, 0, len(m.full))
	for id := range m.full {
		known = append(known, id)
	}
	// A filter-build failure (only possible on pathological duplicate
	// key sets, which a map can't produce) degrades to "no filter": the
	// map lookup below is always the authority.
	f, err := presence.Build(known)
	if err != nil {
		logging.WithComponent("indexmeta").Warn("presence filter build failed", "error", err)
		f = nil
	}
	m.present = f
}

// RelationExists reports whether id names a known relation.
func (m *IndexMetaData) RelationExists(id ids.Id) bool {
	m.ensurePresence()
	if m.present != nil && !m.present.MightContain(id) {
		return false
	}
	_, ok := m.full[id]
	return ok
}

// GetRmd returns the composite view of relation id's metadata. It fails
// with KindMissingRelation when id is absent.
func (m *IndexMetaData) GetRmd(id ids.Id) (RelationMetaData, error) {
	full, ok := m.full[id]
	if !ok {
		return RelationMetaData{}, relerr.New(relerr.KindMissingRelation, "unknown relation id").
			WithPlanString(id.String())
	}

	rmd := RelationMetaData{Full: full}
	if full.HasBlocks() {
		block := m.blocks[id]
		rmd.Blocks = &block
	}
	return rmd, nil
}

// GetNofBlocksForRelation returns 0 when id has no block record, else
// the number of blocks it holds.
func (m *IndexMetaData) GetNofBlocksForRelation(id ids.Id) int {
	block, ok := m.blocks[id]
	if !ok {
		return 0
	}
	return len(block.Blocks)
}

// GetTotalBytesForRelation returns the on-disk footprint of a relation
// given its full header: when a block record exists, the distance from
// the pair segment's start to the block index's OffsetAfter; otherwise
// just the pair-segment size.
func (m *IndexMetaData) GetTotalBytesForRelation(full FullRelationMetaData) uint64 {
	if block, ok := m.blocks[full.RelID]; ok {
		return block.OffsetAfter - full.StartFullIndex
	}
	return full.NofBytesForFulltextIndex()
}

// Stats summarizes an IndexMetaData for human-readable reporting; see
// pkg/stats for the locale-aware rendering of these numbers.
type Stats struct {
	NofRelations           int
	NofRelationsWithBlocks int
	NofBlocksTotal         int
	OnDiskBytes            uint64
	TheoreticalTripleBytes uint64
}

// Statistics computes a Stats snapshot: relation and block counts, the
// on-disk byte total, and the theoretical size of the same data stored
// as flat (lhs, rel, rhs) triples (n * 3 * sizeof(Id)).
func (m *IndexMetaData) Statistics() Stats {
	s := Stats{NofRelations: len(m.full)}
	for id, full := range m.full {
		s.OnDiskBytes += m.GetTotalBytesForRelation(full)
		s.TheoreticalTripleBytes += full.NofElements() * 3 * 8
		if block, ok := m.blocks[id]; ok {
			s.NofRelationsWithBlocks++
			s.NofBlocksTotal += len(block.Blocks)
		}
	}
	return s
}

// WriteTo appends the full persistence-format encoding of m to buf,
// following spec §4.3's on-disk layout exactly: relation count, cached
// offset_after, then each relation's FullRelationMetaData and (when
// present) BlockBasedRelationMetaData. Map iteration order is
// unspecified; Load is order-independent, so round-trip equality holds
// modulo ordering (spec §9).
func (m *IndexMetaData) WriteTo(buf []byte) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(len(m.full)))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], m.offsetAfter)
	buf = append(buf, tmp[:]...)

	for id, full := range m.full {
		buf = full.WriteTo(buf)
		if full.HasBlocks() {
			buf = m.blocks[id].WriteTo(buf)
		}
	}
	return buf
}

// Load decodes an IndexMetaData from buf, trusting the leading relation
// count and advancing a running cursor across each sub-record exactly as
// WriteTo produced them. The caller is responsible for ensuring buf's
// length matches what nof_relations implies (spec §4.3).
func Load(buf []byte) *IndexMetaData {
	m := New()

	nofRelations := binary.LittleEndian.Uint64(buf[0:8])
	m.offsetAfter = binary.LittleEndian.Uint64(buf[8:16])
	off := 16

	for i := uint64(0); i < nofRelations; i++ {
		full := FullRelationMetaDataFromBytes(buf[off:])
		off += full.BytesRequired()

		m.full[full.RelID] = full
		if full.HasBlocks() {
			block, n := BlockBasedRelationMetaDataFromBytes(buf[off:])
			off += n
			m.blocks[full.RelID] = block
		}
	}

	return m
}
