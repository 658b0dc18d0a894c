package indexmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerr "relindex/pkg/error"
	"relindex/pkg/ids"
)

func TestIndexMetaData_S1_SingleRelationNoBlocks(t *testing.T) {
	m := New()
	full := NewFullRelationMetaData(42, 0, 3, false, false)
	m.Add(full, BlockBasedRelationMetaData{})

	buf := m.WriteTo(nil)
	reloaded := Load(buf)

	rmd, err := reloaded.GetRmd(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rmd.NofElements())
	assert.False(t, rmd.HasBlocks())

	_, err = reloaded.GetRmd(99)
	require.Error(t, err)
	qe, ok := err.(*relerr.QueryError)
	require.True(t, ok)
	assert.Equal(t, relerr.KindMissingRelation, qe.Kind)
}

func TestIndexMetaData_S2_BlockRelation(t *testing.T) {
	m := New()
	blocks := NewBlockBasedRelationMetaData(400, 500, []BlockMetaData{
		{FirstLhs: 10, StartOffset: 100},
		{FirstLhs: 20, StartOffset: 200},
		{FirstLhs: 30, StartOffset: 300},
	})
	full := NewFullRelationMetaData(7, 0, 40, false, true)
	m.Add(full, blocks)

	rmd, err := m.GetRmd(7)
	require.NoError(t, err)
	require.NotNil(t, rmd.Blocks)

	cases := []struct {
		lhs        ids.Id
		start, len uint64
	}{
		{10, 100, 100}, {15, 100, 100}, {20, 200, 100},
		{25, 200, 100}, {30, 300, 100}, {35, 300, 100},
	}
	for _, tc := range cases {
		start, length := rmd.Blocks.GetBlockStartAndNofBytesForLhs(tc.lhs)
		assert.Equal(t, tc.start, start)
		assert.Equal(t, tc.len, length)
	}

	assert.Equal(t, 3, m.GetNofBlocksForRelation(7))
	assert.Equal(t, 0, m.GetNofBlocksForRelation(999))
}

func TestIndexMetaData_RoundTripEquality(t *testing.T) {
	m := New()
	m.Add(NewFullRelationMetaData(1, 0, 5, false, false), BlockBasedRelationMetaData{})
	m.Add(NewFullRelationMetaData(2, 40, 10, true, true),
		NewBlockBasedRelationMetaData(200, 250, []BlockMetaData{{FirstLhs: 1, StartOffset: 200}}))

	buf := m.WriteTo(nil)
	reloaded := Load(buf)

	assert.Equal(t, m.full, reloaded.full)
	assert.Equal(t, m.blocks, reloaded.blocks)
	assert.Equal(t, m.offsetAfter, reloaded.offsetAfter)
}

func TestIndexMetaData_OffsetMonotonicity(t *testing.T) {
	m := New()
	m.Add(NewFullRelationMetaData(1, 0, 5, false, false), BlockBasedRelationMetaData{})
	afterFirst := m.OffsetAfter()
	assert.GreaterOrEqual(t, afterFirst, uint64(5*2*8))

	m.Add(NewFullRelationMetaData(2, 1000, 2, false, false), BlockBasedRelationMetaData{})
	afterSecond := m.OffsetAfter()
	assert.GreaterOrEqual(t, afterSecond, afterFirst)
	assert.GreaterOrEqual(t, afterSecond, uint64(1000+2*2*8))
}

func TestIndexMetaData_RelationExists(t *testing.T) {
	m := New()
	m.Add(NewFullRelationMetaData(5, 0, 1, false, false), BlockBasedRelationMetaData{})

	assert.True(t, m.RelationExists(5))
	assert.False(t, m.RelationExists(6))
}

func TestIndexMetaData_S6_MaxElementsBoundary(t *testing.T) {
	m := New()
	full := NewFullRelationMetaData(1, 0, maxNofElements-1, false, false)
	m.Add(full, BlockBasedRelationMetaData{})

	buf := m.WriteTo(nil)
	reloaded := Load(buf)

	rmd, err := reloaded.GetRmd(1)
	require.NoError(t, err)
	assert.Equal(t, maxNofElements-1, rmd.NofElements())

	assert.Panics(t, func() {
		NewFullRelationMetaData(2, 0, maxNofElements, false, false)
	})
}

func TestIndexMetaData_GetTotalBytesForRelation(t *testing.T) {
	m := New()
	full := NewFullRelationMetaData(1, 0, 10, false, true)
	blocks := NewBlockBasedRelationMetaData(160, 260, []BlockMetaData{{FirstLhs: 1, StartOffset: 160}})
	m.Add(full, blocks)

	assert.Equal(t, uint64(260), m.GetTotalBytesForRelation(full))

	full2 := NewFullRelationMetaData(2, 0, 10, false, false)
	m.Add(full2, BlockBasedRelationMetaData{})
	assert.Equal(t, uint64(160), m.GetTotalBytesForRelation(full2))
}

func TestIndexMetaData_Statistics(t *testing.T) {
	m := New()
	m.Add(NewFullRelationMetaData(1, 0, 10, false, false), BlockBasedRelationMetaData{})
	m.Add(NewFullRelationMetaData(2, 200, 5, false, true),
		NewBlockBasedRelationMetaData(280, 300, []BlockMetaData{{FirstLhs: 1, StartOffset: 280}}))

	s := m.Statistics()
	assert.Equal(t, 2, s.NofRelations)
	assert.Equal(t, 1, s.NofRelationsWithBlocks)
	assert.Equal(t, 1, s.NofBlocksTotal)
	assert.Equal(t, uint64((10+5)*3*8), s.TheoreticalTripleBytes)
}
