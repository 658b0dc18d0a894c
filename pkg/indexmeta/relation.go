package indexmeta

// RelationMetaData is the composite view IndexMetaData.GetRmd hands back:
// the fixed header plus, when present, a borrowed reference to the
// relation's block index. Blocks is nil for relations without a block
// index — callers must check HasBlocks() before dereferencing it.
type RelationMetaData struct {
	Full   FullRelationMetaData
	Blocks *BlockBasedRelationMetaData
}

// HasBlocks mirrors Full.HasBlocks for convenience at call sites that
// only have a RelationMetaData in hand.
func (r RelationMetaData) HasBlocks() bool {
	return r.Full.HasBlocks()
}

// NofElements mirrors Full.NofElements.
func (r RelationMetaData) NofElements() uint64 {
	return r.Full.NofElements()
}
