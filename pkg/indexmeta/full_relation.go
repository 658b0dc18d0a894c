package indexmeta

import (
	"encoding/binary"
	"fmt"

	"relindex/pkg/ids"
)

// Bit layout of FullRelationMetaData.typeAndNofElements. These masks are
// part of the on-disk ABI and must never change without a format version
// bump (see IndexMetaData's persistence format).
const (
	isFunctionalMask  uint64 = 1 << 63
	hasBlocksMask     uint64 = 1 << 62
	nofElementsMask   uint64 = (1 << 62) - 1
	maxNofElements    uint64 = 1 << 62 // exclusive upper bound
	fullRelationBytes        = 8 + 8 + 8
)

// FullRelationMetaData is the fixed-size, per-relation header: where its
// pair segment starts on disk, how many elements it holds, and whether it
// is functional and/or backed by a block index.
type FullRelationMetaData struct {
	RelID              ids.Id
	StartFullIndex     uint64
	typeAndNofElements uint64
}

// NewFullRelationMetaData packs nofElements and the two flags into a
// single header record. It panics if nofElements does not fit in the
// lower 62 bits of typeAndNofElements — this is a construction-time
// invariant violation, not a recoverable query error.
func NewFullRelationMetaData(relID ids.Id, startFullIndex, nofElements uint64, isFunctional, hasBlocks bool) FullRelationMetaData {
	if nofElements >= maxNofElements {
		panic(fmt.Sprintf("indexmeta: nofElements %d does not fit in 62 bits", nofElements))
	}

	rmd := FullRelationMetaData{
		RelID:          relID,
		StartFullIndex: startFullIndex,
	}
	rmd.typeAndNofElements = nofElements
	rmd.setIsFunctional(isFunctional)
	rmd.setHasBlocks(hasBlocks)
	return rmd
}

func (r *FullRelationMetaData) setIsFunctional(v bool) {
	if v {
		r.typeAndNofElements |= isFunctionalMask
	} else {
		r.typeAndNofElements &^= isFunctionalMask
	}
}

func (r *FullRelationMetaData) setHasBlocks(v bool) {
	if v {
		r.typeAndNofElements |= hasBlocksMask
	} else {
		r.typeAndNofElements &^= hasBlocksMask
	}
}

// NofElements returns the number of (lhs, rhs) pairs in this relation.
func (r FullRelationMetaData) NofElements() uint64 {
	return r.typeAndNofElements & nofElementsMask
}

// IsFunctional reports whether every lhs maps to at most one rhs.
func (r FullRelationMetaData) IsFunctional() bool {
	return r.typeAndNofElements&isFunctionalMask != 0
}

// HasBlocks reports whether this relation has an associated
// BlockBasedRelationMetaData and rhs-list segment.
func (r FullRelationMetaData) HasBlocks() bool {
	return r.typeAndNofElements&hasBlocksMask != 0
}

// BytesRequired is the fixed on-disk size of a FullRelationMetaData
// record: one Id plus two u64 words.
func (FullRelationMetaData) BytesRequired() int {
	return fullRelationBytes
}

// NofBytesForFulltextIndex is the byte size of the pair segment.
func (r FullRelationMetaData) NofBytesForFulltextIndex() uint64 {
	return r.NofElements() * 2 * 8
}

// StartOfLhs returns the offset where the rhs-list segment begins.
// Precondition: HasBlocks() — callers must check before calling.
func (r FullRelationMetaData) StartOfLhs() uint64 {
	if !r.HasBlocks() {
		panic("indexmeta: StartOfLhs called on a relation without blocks")
	}
	return r.StartFullIndex + r.NofBytesForFulltextIndex()
}

// WriteTo appends this record's little-endian encoding to buf.
func (r FullRelationMetaData) WriteTo(buf []byte) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(r.RelID))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], r.StartFullIndex)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], r.typeAndNofElements)
	buf = append(buf, tmp[:]...)
	return buf
}

// FullRelationMetaDataFromBytes decodes a record from the front of buf.
// buf must have at least BytesRequired() bytes; the caller is responsible
// for bounds-checking before calling, matching the original format's
// trust model of the surrounding IndexMetaData loader.
func FullRelationMetaDataFromBytes(buf []byte) FullRelationMetaData {
	return FullRelationMetaData{
		RelID:              ids.Id(binary.LittleEndian.Uint64(buf[0:8])),
		StartFullIndex:     binary.LittleEndian.Uint64(buf[8:16]),
		typeAndNofElements: binary.LittleEndian.Uint64(buf[16:24]),
	}
}
