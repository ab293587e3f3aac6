package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/statafric/consultation/internal/models"
)

// SQLiteStore persists submissions, drafts and app_config rows in one local
// SQLite file. Read paths degrade (log + empty result) rather than propagate;
// write paths return errors so callers can offer the JSON-backup fallback.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

func NewSQLiteStore(db *sql.DB, path string) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	s := &SQLiteStore{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
	s.ensureEmailUniqueIndex()
	return s, nil
}

// ensureEmailUniqueIndex creates the duplicate-submission guard. Best effort:
// an install that already holds duplicate emails keeps working, the
// application-level existence check stays the primary guarantee.
func (s *SQLiteStore) ensureEmailUniqueIndex() {
	if _, err := s.db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uq_submissions_email ON submissions(lower(email))"); err != nil {
		log.Printf("sqlite store: unique email index not created: %v", err)
	}
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func nowISO(now func() time.Time) string {
	return now().Format(time.RFC3339)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SaveSubmission inserts one finalized response keyed by its fresh UUID. The
// unique email index makes a concurrent duplicate fail here even when the
// EmailExists pre-check raced.
func (s *SQLiteStore) SaveSubmission(sub *models.Submission) error {
	email := normalizeEmail(sub.Email)
	_, err := s.db.Exec(
		"INSERT INTO submissions(submission_id, submitted_at_utc, lang, email, payload_json) VALUES(?,?,?,?,?)",
		sub.SubmissionID, sub.SubmittedAtUTC, sub.Lang, email, sub.PayloadJSON,
	)
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

// EmailExists reports whether a submission is already stored for email,
// case-insensitively.
func (s *SQLiteStore) EmailExists(email string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM submissions WHERE lower(email) = ?", normalizeEmail(email)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return n > 0, nil
}

// ListSubmissions returns up to limit submissions, most recent first.
func (s *SQLiteStore) ListSubmissions(limit int) ([]*models.Submission, error) {
	if limit <= 0 {
		limit = 20000
	}
	rows, err := s.db.Query(
		"SELECT submission_id, submitted_at_utc, lang, email, payload_json FROM submissions ORDER BY submitted_at_utc DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()
	var out []*models.Submission
	for rows.Next() {
		var sub models.Submission
		var submittedAt, lang, email, payload sql.NullString
		if err := rows.Scan(&sub.SubmissionID, &submittedAt, &lang, &email, &payload); err != nil {
			s.logErr("scan submission", err)
			continue
		}
		sub.SubmittedAtUTC = submittedAt.String
		sub.Lang = lang.String
		sub.Email = email.String
		sub.PayloadJSON = payload.String
		out = append(out, &sub)
	}
	return out, rows.Err()
}

// SaveDraft upserts the draft row keyed by its rid.
func (s *SQLiteStore) SaveDraft(d *models.Draft) error {
	updated := d.UpdatedAtUTC
	if updated == "" {
		updated = nowISO(s.now)
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO drafts(draft_id, updated_at_utc, email, payload_json) VALUES(?,?,?,?)",
		d.DraftID, updated, normalizeEmail(d.Email), d.PayloadJSON,
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the draft for rid, or nil when absent.
func (s *SQLiteStore) LoadDraft(rid string) (*models.Draft, error) {
	var d models.Draft
	var updated, email, payload sql.NullString
	err := s.db.QueryRow(
		"SELECT draft_id, updated_at_utc, email, payload_json FROM drafts WHERE draft_id = ?", rid,
	).Scan(&d.DraftID, &updated, &email, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	d.UpdatedAtUTC = updated.String
	d.Email = email.String
	d.PayloadJSON = payload.String
	return &d, nil
}

func (s *SQLiteStore) DeleteDraft(rid string) error {
	if _, err := s.db.Exec("DELETE FROM drafts WHERE draft_id = ?", rid); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// GetConfig returns the app_config value for key, "" when absent.
func (s *SQLiteStore) GetConfig(key string) (string, error) {
	var v sql.NullString
	err := s.db.QueryRow("SELECT v FROM app_config WHERE k = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get config: %w", err)
	}
	return v.String, nil
}

func (s *SQLiteStore) SetConfig(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO app_config(k, v, updated_at_utc) VALUES(?,?,?)",
		key, value, nowISO(s.now),
	)
	if err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteConfig(key string) error {
	if _, err := s.db.Exec("DELETE FROM app_config WHERE k = ?", key); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}

// DatabaseBytes reads the SQLite file for the db/zip exports. A checkpoint
// first folds the WAL into the main file so the copy is self-contained.
func (s *SQLiteStore) DatabaseBytes() ([]byte, error) {
	if s.path == "" {
		return nil, errors.New("database path unknown")
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logErr("wal checkpoint", err)
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read database file: %w", err)
	}
	return b, nil
}
