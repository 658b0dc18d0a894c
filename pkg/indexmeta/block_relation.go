package indexmeta

import (
	"encoding/binary"
	"sort"

	"relindex/pkg/ids"
)

const blockMetaDataBytes = 8 + 8

// BlockMetaData marks the beginning of one block within a relation's
// rhs-list segment. firstLhs is the smallest lhs value whose rhs entries
// begin in this block; blocks are stored sorted by FirstLhs (equivalently
// by StartOffset).
type BlockMetaData struct {
	FirstLhs    ids.Id
	StartOffset uint64
}

func (b BlockMetaData) writeTo(buf []byte) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(b.FirstLhs))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], b.StartOffset)
	buf = append(buf, tmp[:]...)
	return buf
}

func blockMetaDataFromBytes(buf []byte) BlockMetaData {
	return BlockMetaData{
		FirstLhs:    ids.Id(binary.LittleEndian.Uint64(buf[0:8])),
		StartOffset: binary.LittleEndian.Uint64(buf[8:16]),
	}
}

// BlockBasedRelationMetaData is the block index over a relation's
// rhs-list segment: StartRhs is the end of the last block (equivalently
// the start of whatever logically follows), OffsetAfter is the end of
// this relation's footprint on disk, and Blocks is kept sorted by
// FirstLhs.
type BlockBasedRelationMetaData struct {
	StartRhs    uint64
	OffsetAfter uint64
	Blocks      []BlockMetaData
}

// NewBlockBasedRelationMetaData constructs a block index record. Blocks
// must already be sorted by FirstLhs/StartOffset; this is a caller
// invariant, not something re-validated here or by the builder in
// pkg/indexbuild, which stores the records its caller hands it.
func NewBlockBasedRelationMetaData(startRhs, offsetAfter uint64, blocks []BlockMetaData) BlockBasedRelationMetaData {
	return BlockBasedRelationMetaData{
		StartRhs:    startRhs,
		OffsetAfter: offsetAfter,
		Blocks:      blocks,
	}
}

// BytesRequired is the on-disk size of this record: two u64 words, a
// block count, and the blocks themselves.
func (b BlockBasedRelationMetaData) BytesRequired() int {
	return 8 + 8 + 8 + len(b.Blocks)*blockMetaDataBytes
}

// WriteTo appends this record's little-endian encoding to buf.
func (b BlockBasedRelationMetaData) WriteTo(buf []byte) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], b.StartRhs)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], b.OffsetAfter)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], uint64(len(b.Blocks)))
	buf = append(buf, tmp[:]...)
	for _, blk := range b.Blocks {
		buf = blk.writeTo(buf)
	}
	return buf
}

// BlockBasedRelationMetaDataFromBytes decodes a record from the front of
// buf, returning the record and the number of bytes consumed.
func BlockBasedRelationMetaDataFromBytes(buf []byte) (BlockBasedRelationMetaData, int) {
	startRhs := binary.LittleEndian.Uint64(buf[0:8])
	offsetAfter := binary.LittleEndian.Uint64(buf[8:16])
	nofBlocks := binary.LittleEndian.Uint64(buf[16:24])

	blocks := make([]BlockMetaData, nofBlocks)
	off := 24
	for i := range blocks {
		blocks[i] = blockMetaDataFromBytes(buf[off:])
		off += blockMetaDataBytes
	}

	return BlockBasedRelationMetaData{
		StartRhs:    startRhs,
		OffsetAfter: offsetAfter,
		Blocks:      blocks,
	}, off
}

// lowerBound returns the index of the first block whose FirstLhs >= lhs,
// or len(Blocks) if none qualifies.
func (b BlockBasedRelationMetaData) lowerBound(lhs ids.Id) int {
	return sort.Search(len(b.Blocks), func(i int) bool {
		return b.Blocks[i].FirstLhs >= lhs
	})
}

// findBlock runs the block-lookup algorithm from spec §4.2: find the
// first block whose FirstLhs >= lhs, then step back one block unless
// that block's FirstLhs is an exact match. Panics (a hard assertion
// failure, per spec §7's LhsBelowRange) if lhs is smaller than every
// stored block's FirstLhs — that is a planner bug, not a recoverable
// condition.
func (b BlockBasedRelationMetaData) findBlock(lhs ids.Id) int {
	if len(b.Blocks) == 0 {
		panic("indexmeta: block lookup on a relation with no blocks")
	}

	p := b.lowerBound(lhs)
	if p == len(b.Blocks) || b.Blocks[p].FirstLhs > lhs {
		if p == 0 {
			panic("indexmeta: lhs below the range of every stored block")
		}
		p--
	}
	return p
}

// GetBlockStartAndNofBytesForLhs locates the block containing rhs
// entries for lhs and returns its start offset and byte length.
func (b BlockBasedRelationMetaData) GetBlockStartAndNofBytesForLhs(lhs ids.Id) (startOffset, nofBytes uint64) {
	p := b.findBlock(lhs)
	return b.Blocks[p].StartOffset, b.blockLength(p)
}

// GetFollowBlockForLhs performs the same lookup as
// GetBlockStartAndNofBytesForLhs, then advances one block further if a
// successor exists. Used to scan entries strictly greater than lhs.
func (b BlockBasedRelationMetaData) GetFollowBlockForLhs(lhs ids.Id) (startOffset, nofBytes uint64) {
	p := b.findBlock(lhs)
	if p+1 < len(b.Blocks) {
		p++
	}
	return b.Blocks[p].StartOffset, b.blockLength(p)
}

// blockLength returns the byte length of block p: the distance to the
// next block's start offset, or to StartRhs for the last block.
func (b BlockBasedRelationMetaData) blockLength(p int) uint64 {
	if p+1 < len(b.Blocks) {
		return b.Blocks[p+1].StartOffset - b.Blocks[p].StartOffset
	}
	return b.StartRhs - b.Blocks[p].StartOffset
}
