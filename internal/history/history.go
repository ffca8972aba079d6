package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/warmlead/reachout/internal/contacts"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/001_initial.sql
var initialMigration string

// Store keeps a durable record of sent outreach so candidates are never
// contacted twice.
type Store struct {
	db *sql.DB
}

// Entry is one recorded outreach.
type Entry struct {
	ID            int64
	CandidateID   string
	CandidateName string
	Email         string
	Company       string
	MessageID     string
	Subject       string
	Status        string
	SentAt        time.Time
}

// Open opens or creates the history database at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite doesn't support concurrent writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	var tableCount int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='outreach'
	`).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check migrations: %w", err)
	}

	if tableCount == 0 {
		if _, err := s.db.Exec(initialMigration); err != nil {
			return fmt.Errorf("run initial migration: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a sent outreach for the candidate.
func (s *Store) Record(candidate *contacts.Candidate, messageID, subject string) error {
	_, err := s.db.Exec(`
		INSERT INTO outreach (candidate_id, candidate_name, email, company, message_id, subject)
		VALUES (?, ?, ?, ?, ?, ?)
	`, candidate.ID, candidate.Name, candidate.Email, candidate.Company, messageID, subject)
	if err != nil {
		return fmt.Errorf("record outreach: %w", err)
	}

	return nil
}

// ContactedIDs returns the candidate ids of every recorded outreach.
func (s *Store) ContactedIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT candidate_id FROM outreach`)
	if err != nil {
		return nil, fmt.Errorf("list contacted candidates: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// FindByCandidate returns recorded outreach for a candidate, newest first.
func (s *Store) FindByCandidate(candidateID string) ([]*Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, candidate_id, candidate_name, email, company, message_id, subject, status, sent_at
		FROM outreach
		WHERE candidate_id = ?
		ORDER BY sent_at DESC
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("find outreach: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(
			&entry.ID, &entry.CandidateID, &entry.CandidateName, &entry.Email,
			&entry.Company, &entry.MessageID, &entry.Subject, &entry.Status, &entry.SentAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpdateStatus stores the latest delivery event for a sent message.
func (s *Store) UpdateStatus(messageID, status string) error {
	_, err := s.db.Exec(`UPDATE outreach SET status = ? WHERE message_id = ?`, status, messageID)
	if err != nil {
		return fmt.Errorf("update outreach status: %w", err)
	}
	return nil
}
