// Package strid maps human-readable asset names to stable uint32
// identifiers. The mapping is persisted as a line-oriented text store:
// line N of the store (1-based) is the name of identifier N. Identifier
// 0 is reserved and never assigned, so the ids of a store never change
// across runs; names are only ever appended.
package strid

import (
	"bufio"
	"os"

	"github.com/spaghettifunk/crpg/engine/core"
)

// DB is one interner instance. It is a plain object passed to whatever
// needs interning; there is no process-global table. A DB is a
// single-writer offline structure with no locking.
type DB struct {
	nameToID map[string]uint32
	idToName []string
}

func NewDB() *DB {
	return &DB{
		nameToID: make(map[string]uint32),
	}
}

// Load reads the store at path and rebuilds the name/id mapping from
// line order. The store must exist: tools treat an unopenable store as
// fatal because silently starting from an empty table would reassign
// every id.
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		core.LogError("failed to open '%s' as id store: %s", path, err.Error())
		return nil, err
	}
	defer f.Close()

	db := NewDB()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		db.GetID(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		core.LogError("failed to read id store '%s': %s", path, err.Error())
		return nil, err
	}

	return db, nil
}

// GetID returns the identifier of name, interning it first if it is
// new. Interning is idempotent: the same name always yields the same
// id, and ids are assigned sequentially from 1 with no reuse.
func (db *DB) GetID(name string) uint32 {
	if id, ok := db.nameToID[name]; ok {
		return id
	}
	db.idToName = append(db.idToName, name)
	id := uint32(len(db.idToName))
	db.nameToID[name] = id
	return id
}

// Lookup returns the identifier of name without interning it.
func (db *DB) Lookup(name string) (uint32, bool) {
	id, ok := db.nameToID[name]
	return id, ok
}

// Name returns the name of an identifier, if assigned.
func (db *DB) Name(id uint32) (string, bool) {
	if id == 0 || int(id) > len(db.idToName) {
		return "", false
	}
	return db.idToName[id-1], true
}

// Count returns the number of interned names.
func (db *DB) Count() int {
	return len(db.idToName)
}

// Write overwrites the store at path with one name per line in id
// order, losslessly round-tripping with Load.
func (db *DB) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		core.LogError("failed to write id store '%s': %s", path, err.Error())
		return err
	}

	out := bufio.NewWriter(f)
	for _, name := range db.idToName {
		if _, err := out.WriteString(name + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := out.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
