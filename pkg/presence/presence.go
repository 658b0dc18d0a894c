// Package presence provides a compact "have we ever heard of this id"
// check backed by a xor8 filter, used by IndexMetaData to answer
// RelationExists without touching the relation map for ids that were
// never part of the index.
package presence

import (
	"github.com/FastFilter/xorfilter"

	"relindex/pkg/ids"
)

// Filter is a read-only, false-positive-tolerant membership test over a
// fixed set of ids. IndexMetaData builds one lazily, on the first
// RelationExists after its relation set last changed, from every known
// relation id; a built Filter is never mutated afterwards.
type Filter struct {
	xor *xorfilter.Xor8
}

// Build constructs a Filter over the given ids. An empty input set is
// valid: the returned Filter reports every probe as absent.
func Build(known []ids.Id) (*Filter, error) {
	if len(known) == 0 {
		return &Filter{}, nil
	}

	keys := make([]uint64, len(known))
	for i, id := range known {
		keys[i] = uint64(id)
	}

	xor, err := xorfilter.Populate(keys)
	if err != nil {
		return nil, err
	}
	return &Filter{xor: xor}, nil
}

// MightContain reports whether id could be a member of the set the
// filter was built from. A false result is definitive; a true result
// must be confirmed against the authoritative map, since xor8 filters
// have a small, fixed false-positive rate.
func (f *Filter) MightContain(id ids.Id) bool {
	if f == nil || f.xor == nil {
		return false
	}
	return f.xor.Contains(uint64(id))
}
