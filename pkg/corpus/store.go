// Package corpus provides frequency-list seed data for the generative
// fallback. Word ranks are loaded from published frequency lists into a
// local SQLite database and consulted when building frequency tasks; a
// corpus miss is never an error, just an unseeded task.
package corpus

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

// Rank is one word's position in the frequency corpus. Rank 1 is the most
// common word; PerMillion is occurrences per million corpus tokens.
type Rank struct {
	Word       string
	Rank       int
	PerMillion float64
}

// Band buckets a corpus rank into the frequency vocabulary the generative
// schema uses. Thresholds follow the conventional learner-list cut-offs:
// the first 2k words cover everyday speech, 5k comfortable reading, 20k
// educated vocabulary.
func Band(rank int) string {
	switch {
	case rank <= 0:
		return ""
	case rank <= 2000:
		return "very_common"
	case rank <= 5000:
		return "common"
	case rank <= 20000:
		return "uncommon"
	case rank <= 50000:
		return "rare"
	default:
		return "very_rare"
	}
}

// Store is a read-mostly rank table over SQLite. The same database file can
// be shared by concurrent lookups; writes happen only during import.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a rank store at the given path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("corpus path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initDB(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS word_ranks (
		word TEXT PRIMARY KEY,
		rank INTEGER NOT NULL,
		per_million REAL NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to initialize corpus schema: %w", err)
	}
	return nil
}

// Rank returns the rank row for a word, case-folded, and whether the corpus
// knows the word at all.
func (s *Store) Rank(word string) (Rank, bool, error) {
	folded := foldWord(word)
	if folded == "" {
		return Rank{}, false, nil
	}

	var r Rank
	query := `SELECT word, rank, per_million FROM word_ranks WHERE word = ?`
	err := s.db.QueryRow(query, folded).Scan(&r.Word, &r.Rank, &r.PerMillion)
	if err == sql.ErrNoRows {
		return Rank{}, false, nil
	}
	if err != nil {
		return Rank{}, false, fmt.Errorf("failed to query corpus: %w", err)
	}
	return r, true, nil
}

// Put inserts or replaces one rank row. Words are case-folded on the way in
// so lookups and imports agree on the key.
func (s *Store) Put(r Rank) error {
	folded := foldWord(r.Word)
	if folded == "" {
		return fmt.Errorf("corpus word must be non-empty")
	}
	query := `INSERT OR REPLACE INTO word_ranks (word, rank, per_million) VALUES (?, ?, ?)`
	if _, err := s.db.Exec(query, folded, r.Rank, r.PerMillion); err != nil {
		return fmt.Errorf("failed to store rank: %w", err)
	}
	return nil
}

// putBatch inserts rows inside one transaction; used by the importer.
func (s *Store) putBatch(ranks []Rank) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO word_ranks (word, rank, per_million) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare import statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range ranks {
		folded := foldWord(r.Word)
		if folded == "" {
			continue
		}
		if _, err := stmt.Exec(folded, r.Rank, r.PerMillion); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to import rank for %q: %w", r.Word, err)
		}
	}
	return tx.Commit()
}

// Len returns the number of ranked words.
func (s *Store) Len() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM word_ranks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count corpus rows: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func foldWord(word string) string {
	return cases.Fold().String(strings.TrimSpace(word))
}
