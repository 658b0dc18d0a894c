// Package catalog resolves an ontology basename (spec §6's -o flag) to
// the on-disk path and top-level byte layout of its index file, so a
// server process can open the right file without re-scanning a
// directory. It is a small embedded-KV registry backed by
// go.etcd.io/bbolt, one bucket holding one entry per ontology.
package catalog

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"relindex/pkg/ids"
	"relindex/pkg/logging"
)

var ontologiesBucket = []byte("ontologies")

// Entry is what the catalog stores for one ontology: where its index
// file lives and the top-level facts about its layout that a server
// wants without opening and parsing the file.
type Entry struct {
	IndexPath     string
	OffsetAfter   uint64
	NofRelations  uint64
	MaxRelationID ids.Id
}

// Catalog is a bbolt-backed name -> Entry registry.
type Catalog struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ontologiesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create bucket: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close releases the underlying bbolt handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Register stores or replaces the Entry for ontology name.
func (c *Catalog) Register(name string, e Entry) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(ontologiesBucket)
		return b.Put([]byte(name), encodeEntry(e))
	})
	if err != nil {
		return fmt.Errorf("catalog: register %s: %w", name, err)
	}
	logging.WithComponent("catalog").Info("ontology registered", "name", name, "path", e.IndexPath)
	return nil
}

// Lookup returns the Entry registered for name. The bool result is
// false when name is unknown.
func (c *Catalog) Lookup(name string) (Entry, bool, error) {
	var e Entry
	var found bool

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(ontologiesBucket)
		v := b.Get([]byte(name))
		if v == nil {
			return nil
		}
		found = true
		var decErr error
		e, decErr = decodeEntry(v)
		return decErr
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("catalog: lookup %s: %w", name, err)
	}
	return e, found, nil
}

// Names returns every registered ontology name.
func (c *Catalog) Names() ([]string, error) {
	var names []string
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(ontologiesBucket)
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: list names: %w", err)
	}
	return names, nil
}

// encodeEntry packs an Entry into a fixed-width little-endian record
// followed by the variable-length path, matching the length-prefixed
// style of relindex's other on-disk records.
func encodeEntry(e Entry) []byte {
	buf := make([]byte, 0, 8+8+8+8+len(e.IndexPath))
	var tmp [8]byte

	binary.LittleEndian.PutUint64(tmp[:], e.OffsetAfter)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], e.NofRelations)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], uint64(e.MaxRelationID))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], uint64(len(e.IndexPath)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, e.IndexPath...)
	return buf
}

func decodeEntry(buf []byte) (Entry, error) {
	if len(buf) < 32 {
		return Entry{}, fmt.Errorf("catalog: entry record too short: %d bytes", len(buf))
	}
	e := Entry{
		OffsetAfter:   binary.LittleEndian.Uint64(buf[0:8]),
		NofRelations:  binary.LittleEndian.Uint64(buf[8:16]),
		MaxRelationID: ids.Id(binary.LittleEndian.Uint64(buf[16:24])),
	}
	pathLen := binary.LittleEndian.Uint64(buf[24:32])
	if uint64(len(buf)-32) < pathLen {
		return Entry{}, fmt.Errorf("catalog: entry record truncated path")
	}
	e.IndexPath = string(buf[32 : 32+pathLen])
	return e, nil
}
