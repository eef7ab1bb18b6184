package db

import (
	"database/sql"
	"fmt"

	"github.com/histofy/histofy/internal/journal"
)

// SQLiteStore persists journal entries in SQLite. It implements
// journal.Store; the collection in memory remains the source of truth and
// writes through on every mutation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an initialized database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns all entries in canonical order. ULIDs sort
// lexicographically by creation time, so ordering by created_at with id as
// tiebreaker reproduces insertion order.
func (s *SQLiteStore) List() ([]journal.Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, title, location, visit_date, image_ref, notes, favorite, created_at, modified_at
		FROM journal_entries
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var favorite int
		if err := rows.Scan(&e.ID, &e.Title, &e.Location, &e.VisitDate, &e.ImageRef,
			&e.Notes, &favorite, &e.CreatedAt, &e.ModifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Favorite = favorite != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal entries: %w", err)
	}

	return entries, nil
}

// Put inserts or replaces an entry by id.
func (s *SQLiteStore) Put(e journal.Entry) error {
	favorite := 0
	if e.Favorite {
		favorite = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO journal_entries (id, title, location, visit_date, image_ref, notes, favorite, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title       = excluded.title,
		  location    = excluded.location,
		  visit_date  = excluded.visit_date,
		  image_ref   = excluded.image_ref,
		  notes       = excluded.notes,
		  favorite    = excluded.favorite,
		  modified_at = excluded.modified_at`,
		e.ID, e.Title, e.Location, e.VisitDate, e.ImageRef, e.Notes, favorite, e.CreatedAt, e.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to put journal entry: %w", err)
	}
	return nil
}

// Delete removes an entry by id. Deleting an absent id is not an error
// here; existence checks belong to the collection.
func (s *SQLiteStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return nil
}
