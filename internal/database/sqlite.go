package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"snip-go/internal/database/migrations"
	"snip-go/internal/snip"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the snip.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:   db,
		path: "",
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must be
	// limited to one or queries would see different databases.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Document operations

// CreateDocumentWithIndex inserts the document row and one term_index row
// per distinct term inside a single transaction. A failure at any point
// rolls back everything, so no partial index can ever be observed.
func (s *SQLiteDatabase) CreateDocumentWithIndex(doc *snip.Document, termCounts map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &snip.StorageError{Op: "starting transaction", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO document (id, name, created_at, body, word_count) VALUES (?, ?, ?, ?, ?)",
		doc.ID.String(), doc.Name, formatTime(doc.CreatedAt), doc.Body, doc.WordCount,
	)
	if err != nil {
		return &snip.StorageError{Op: "inserting document", Err: err}
	}

	stmt, err := tx.Prepare("INSERT INTO term_index (document_id, term, frequency) VALUES (?, ?, ?)")
	if err != nil {
		return &snip.StorageError{Op: "preparing index insert", Err: err}
	}
	defer stmt.Close()

	for term, freq := range termCounts {
		if _, err := stmt.Exec(doc.ID.String(), term, freq); err != nil {
			return &snip.StorageError{Op: "inserting index entry", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &snip.StorageError{Op: "committing transaction", Err: err}
	}
	return nil
}

func (s *SQLiteDatabase) GetDocument(id snip.DocumentID) (*snip.Document, error) {
	row := s.db.QueryRow(
		"SELECT id, name, created_at, body, word_count FROM document WHERE id = ?",
		id.String(),
	)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, &snip.StorageError{Op: "loading document", Err: err}
	}
	return doc, nil
}

func (s *SQLiteDatabase) ListDocuments() ([]*snip.Document, error) {
	// rowid order is insertion order, which is creation order for an
	// append-only store. created_at is a display value, not a sort key:
	// its offsets vary.
	rows, err := s.db.Query(
		"SELECT id, name, created_at, body, word_count FROM document ORDER BY rowid",
	)
	if err != nil {
		return nil, &snip.StorageError{Op: "listing documents", Err: err}
	}
	defer rows.Close()

	var docs []*snip.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, &snip.StorageError{Op: "scanning document row", Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &snip.StorageError{Op: "listing documents", Err: err}
	}
	return docs, nil
}

func (s *SQLiteDatabase) RenameDocument(id snip.DocumentID, name string) error {
	res, err := s.db.Exec("UPDATE document SET name = ? WHERE id = ?", name, id.String())
	if err != nil {
		return &snip.StorageError{Op: "renaming document", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &snip.StorageError{Op: "renaming document", Err: err}
	}
	if n == 0 {
		return &snip.NotFoundError{Fragment: id.String()}
	}
	return nil
}

func (s *SQLiteDatabase) FindDocumentIDsByPrefix(fragment string) ([]snip.DocumentID, error) {
	// substr comparison instead of LIKE so fragments containing LIKE
	// metacharacters cannot widen the match.
	rows, err := s.db.Query(
		"SELECT id FROM document WHERE substr(id, 1, ?) = ? ORDER BY id",
		len(fragment), fragment,
	)
	if err != nil {
		return nil, &snip.StorageError{Op: "scanning document ids", Err: err}
	}
	defer rows.Close()

	var ids []snip.DocumentID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &snip.StorageError{Op: "scanning document id", Err: err}
		}
		ids = append(ids, snip.DocumentID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, &snip.StorageError{Op: "scanning document ids", Err: err}
	}
	return ids, nil
}

// Term index operations

func (s *SQLiteDatabase) FindTermMatches(terms []string) ([]snip.TermMatch, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(terms))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(terms))
	for i, t := range terms {
		args[i] = t
	}

	rows, err := s.db.Query(
		"SELECT document_id, term, frequency FROM term_index WHERE term IN ("+placeholders+") ORDER BY document_id, term",
		args...,
	)
	if err != nil {
		return nil, &snip.StorageError{Op: "scanning term index", Err: err}
	}
	defer rows.Close()

	var matches []snip.TermMatch
	for rows.Next() {
		var m snip.TermMatch
		var docID string
		if err := rows.Scan(&docID, &m.Term, &m.Frequency); err != nil {
			return nil, &snip.StorageError{Op: "scanning term match", Err: err}
		}
		m.DocumentID = snip.DocumentID(docID)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &snip.StorageError{Op: "scanning term index", Err: err}
	}
	return matches, nil
}

// Attachment operations

func (s *SQLiteDatabase) CreateAttachment(a *snip.Attachment) error {
	_, err := s.db.Exec(
		"INSERT INTO attachment (id, document_id, name, size, created_at, data) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID.String(), a.DocumentID.String(), a.Name, a.Size, formatTime(a.CreatedAt), a.Data,
	)
	if err != nil {
		return &snip.StorageError{Op: "inserting attachment", Err: err}
	}
	return nil
}

func (s *SQLiteDatabase) GetAttachment(id snip.AttachmentID) (*snip.Attachment, error) {
	row := s.db.QueryRow(
		"SELECT id, document_id, name, size, created_at, data FROM attachment WHERE id = ?",
		id.String(),
	)

	var a snip.Attachment
	var attID, docID, createdAt string
	err := row.Scan(&attID, &docID, &a.Name, &a.Size, &createdAt, &a.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, &snip.StorageError{Op: "loading attachment", Err: err}
	}

	a.ID = snip.AttachmentID(attID)
	a.DocumentID = snip.DocumentID(docID)
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, &snip.StorageError{Op: "parsing attachment timestamp", Err: err}
	}
	return &a, nil
}

func (s *SQLiteDatabase) ListAttachments(parent snip.DocumentID) ([]*snip.Attachment, error) {
	rows, err := s.db.Query(
		"SELECT id, document_id, name, size, created_at FROM attachment WHERE document_id = ? ORDER BY rowid",
		parent.String(),
	)
	if err != nil {
		return nil, &snip.StorageError{Op: "listing attachments", Err: err}
	}
	defer rows.Close()

	var attachments []*snip.Attachment
	for rows.Next() {
		var a snip.Attachment
		var attID, docID, createdAt string
		if err := rows.Scan(&attID, &docID, &a.Name, &a.Size, &createdAt); err != nil {
			return nil, &snip.StorageError{Op: "scanning attachment row", Err: err}
		}
		a.ID = snip.AttachmentID(attID)
		a.DocumentID = snip.DocumentID(docID)
		a.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, &snip.StorageError{Op: "parsing attachment timestamp", Err: err}
		}
		attachments = append(attachments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, &snip.StorageError{Op: "listing attachments", Err: err}
	}
	return attachments, nil
}

func (s *SQLiteDatabase) RemoveAttachment(id snip.AttachmentID) error {
	res, err := s.db.Exec("DELETE FROM attachment WHERE id = ?", id.String())
	if err != nil {
		return &snip.StorageError{Op: "removing attachment", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &snip.StorageError{Op: "removing attachment", Err: err}
	}
	if n == 0 {
		return &snip.NotFoundError{Fragment: id.String()}
	}
	return nil
}

func (s *SQLiteDatabase) FindAttachmentIDsByPrefix(fragment string) ([]snip.AttachmentID, error) {
	rows, err := s.db.Query(
		"SELECT id FROM attachment WHERE substr(id, 1, ?) = ? ORDER BY id",
		len(fragment), fragment,
	)
	if err != nil {
		return nil, &snip.StorageError{Op: "scanning attachment ids", Err: err}
	}
	defer rows.Close()

	var ids []snip.AttachmentID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &snip.StorageError{Op: "scanning attachment id", Err: err}
		}
		ids = append(ids, snip.AttachmentID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, &snip.StorageError{Op: "scanning attachment ids", Err: err}
	}
	return ids, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate brings the schema up to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return &snip.StorageError{Op: "backing up database", Err: err}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*snip.Document, error) {
	var doc snip.Document
	var id, createdAt string
	if err := row.Scan(&id, &doc.Name, &createdAt, &doc.Body, &doc.WordCount); err != nil {
		return nil, err
	}
	doc.ID = snip.DocumentID(id)

	ts, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing document timestamp: %w", err)
	}
	doc.CreatedAt = ts
	return &doc, nil
}

// Timestamps are stored as RFC 3339 text so the creation offset survives the
// round trip.

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Compile-time check that SQLiteDatabase implements snip.Database interface
var _ snip.Database = (*SQLiteDatabase)(nil)
