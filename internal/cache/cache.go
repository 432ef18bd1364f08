package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/airules/airules/internal/files"
)

// DB remembers what airules last wrote to each output file.
type DB struct {
	// Path relative to project root -> content hash (xxhash64 hex)
	Entries map[string]string `json:"entries"`
}

func defaultPath(root string) string {
	// Prefer storing cache under .git to avoid accidental commits
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "airulescache.json")
	}
	return filepath.Join(root, ".airulescache.json")
}

// Hash returns the hex xxhash64 of data as stored in the DB.
func Hash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// Load reads the DB for root. On error an empty, usable DB is returned
// alongside it.
func Load(root string) (DB, error) {
	var db DB
	f, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	return db, nil
}

// Save writes db for root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return files.WriteFileAtomic(defaultPath(root), b, 0o644)
}

// Record stores the hash of the content just written to rel.
func (db DB) Record(rel string, data []byte) {
	db.Entries[filepath.ToSlash(rel)] = Hash(data)
}

// EditedOutside reports whether rel holds content airules did not write,
// i.e. a hash is recorded and the current content does not match it.
func (db DB) EditedOutside(rel string, current []byte) bool {
	h, ok := db.Entries[filepath.ToSlash(rel)]
	return ok && h != Hash(current)
}
