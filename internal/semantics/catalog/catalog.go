// Package catalog backs LanguageSemantics.GetStandardLibrary with an
// embedded, pure-Go SQLite database rather than a hand-rolled map, so the
// pluggable-catalog contract in spec.md section 4.1 is exercised by a real
// SQL driver the way the teacher repo reaches for a real driver over ad hoc
// in-memory tables for any lookup with more than a handful of entries.
package catalog

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Catalog is a small, embedded SQLite-backed store of standard library
// metadata: for each canonical library name, the design units and views it
// declares. One Catalog is shared by every LanguageSemantics implementation
// given the Catalog returned by one Open call.
type Catalog struct {
	mu sync.RWMutex
	db *sql.DB
}

// Library mirrors semantics.StandardLibrary without importing that package,
// keeping catalog dependency-free of the semantics interface.
type Library struct {
	Name        string
	DesignUnits []string
	Views       []string
}

const schema = `
CREATE TABLE IF NOT EXISTS libraries (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS design_units (
	library TEXT NOT NULL REFERENCES libraries(name),
	name    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS views (
	library TEXT NOT NULL REFERENCES libraries(name),
	name    TEXT NOT NULL
);
`

// Open creates an in-memory SQLite-backed catalog and seeds it with the
// given libraries. An in-memory database is sufficient here: the catalog's
// lifetime matches one simplification run, not a persistent installation.
func Open(seed []Library) (*Catalog, error) {
	db, err := sql.Open("sqlite", "file:hifcore-catalog?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: schema: %w", err)
	}
	c := &Catalog{db: db}
	for _, lib := range seed {
		if err := c.insert(lib); err != nil {
			db.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) insert(lib Library) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: insert %q: %w", lib.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO libraries(name) VALUES (?)`, lib.Name); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM design_units WHERE library = ?`, lib.Name); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM views WHERE library = ?`, lib.Name); err != nil {
		return err
	}
	for _, du := range lib.DesignUnits {
		if _, err := tx.Exec(`INSERT INTO design_units(library, name) VALUES (?, ?)`, lib.Name, du); err != nil {
			return err
		}
	}
	for _, v := range lib.Views {
		if _, err := tx.Exec(`INSERT INTO views(library, name) VALUES (?, ?)`, lib.Name, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Lookup returns the library registered under name, if any.
func (c *Catalog) Lookup(name string) (Library, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var exists int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM libraries WHERE name = ?`, name).Scan(&exists); err != nil || exists == 0 {
		return Library{}, false
	}

	lib := Library{Name: name}
	rows, err := c.db.Query(`SELECT name FROM design_units WHERE library = ? ORDER BY name`, name)
	if err != nil {
		return Library{}, false
	}
	for rows.Next() {
		var n string
		if rows.Scan(&n) == nil {
			lib.DesignUnits = append(lib.DesignUnits, n)
		}
	}
	rows.Close()

	rows, err = c.db.Query(`SELECT name FROM views WHERE library = ? ORDER BY name`, name)
	if err != nil {
		return Library{}, false
	}
	for rows.Next() {
		var n string
		if rows.Scan(&n) == nil {
			lib.Views = append(lib.Views, n)
		}
	}
	rows.Close()

	return lib, true
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error { return c.db.Close() }
