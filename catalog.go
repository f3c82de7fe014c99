package sourcehold

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Catalog records the files seen by Scan and summary statistics for each
// of their sections.
type Catalog struct {
	db *sql.DB
}

// SectionStats summarises one decoded section.
type SectionStats struct {
	Name     string
	Kind     string
	Cells    int
	Distinct int
}

// NewCatalog opens or creates a catalog database.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Scan workers share the connection; sqlite serialises writers anyway
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS file (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, size INTEGER NOT NULL, layout TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS section (file_id INTEGER NOT NULL, name TEXT NOT NULL, kind TEXT NOT NULL, cells INTEGER NOT NULL, distinct_values INTEGER NOT NULL, UNIQUE(file_id, name), FOREIGN KEY(file_id) REFERENCES file(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (cat *Catalog) Close() error {
	return cat.db.Close()
}

// AddFile records a file, replacing any previous record for the same path
// along with its sections.
func (cat *Catalog) AddFile(path, sha1 string, size int64, layout string, sections []SectionStats) error {
	tx, err := cat.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM file WHERE path = ?", path); err != nil {
		return err
	}

	result, err := tx.Exec("INSERT INTO file (path, sha1, size, layout) VALUES (?, ?, ?, ?)", path, sha1, size, layout)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for _, s := range sections {
		if _, err := tx.Exec("INSERT INTO section (file_id, name, kind, cells, distinct_values) VALUES (?, ?, ?, ?, ?)", id, s.Name, s.Kind, s.Cells, s.Distinct); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindBySHA1 returns the paths of every file with the given hash.
func (cat *Catalog) FindBySHA1(sha1 string) ([]string, error) {
	rows, err := cat.db.Query("SELECT path FROM file WHERE sha1 = ? ORDER BY path", sha1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Sections returns the recorded sections of a file in name order, or nil
// if the file is unknown.
func (cat *Catalog) Sections(path string) ([]SectionStats, error) {
	rows, err := cat.db.Query("SELECT s.name, s.kind, s.cells, s.distinct_values FROM section AS s JOIN file AS f ON s.file_id = f.id WHERE f.path = ? ORDER BY s.name", path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []SectionStats
	for rows.Next() {
		var s SectionStats
		if err := rows.Scan(&s.Name, &s.Kind, &s.Cells, &s.Distinct); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// Files returns the number of recorded files.
func (cat *Catalog) Files() (int, error) {
	var n int
	err := cat.db.QueryRow("SELECT COUNT(*) FROM file").Scan(&n)
	return n, err
}
