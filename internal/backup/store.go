// Package backup persists opaque backup blobs in an embedded SQLite
// database, keyed by (owner, key). The core connectivity tracker never sees
// this package; the CLI glue gates access on the offline-only rule and maps
// every load failure to "no backup available".
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

// walJournalSizeLimit caps the WAL journal at 8 MiB; backup blobs are small.
const walJournalSizeLimit = 8388608

// Sentinel errors for callers that distinguish outcomes. The CLI maps
// ErrNotFound (and any other load failure) to "no backup available".
var (
	ErrNotFound      = errors.New("backup: no backup available")
	ErrOwnerMismatch = errors.New("backup: owner id does not match stored backup")
	ErrEmptyOwner    = errors.New("backup: owner id must not be empty")
)

// Store is a SQLite-backed blob store with WAL mode. Each key holds one
// blob and remembers the owner that wrote it; reads and deletes validate
// the owner before touching the row.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// NewStore opens (or creates) the database at dbPath, applies migrations,
// and prepares the repeated statements. Use ":memory:" for tests.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	logger.Info("opening backup database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("backup: open sqlite: %w", err)
	}

	if err := setPragmas(context.Background(), db, logger); err != nil {
		db.Close()

		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()

		return nil, err
	}

	s := &Store{db: db, logger: logger}

	if err := s.prepareStatements(context.Background()); err != nil {
		db.Close()

		return nil, fmt.Errorf("backup: prepare statements: %w", err)
	}

	return s, nil
}

// setPragmas configures SQLite for WAL mode and safety.
func setPragmas(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	pragmas := []struct {
		sql  string
		desc string
	}{
		{"PRAGMA journal_mode = WAL", "WAL mode"},
		{"PRAGMA synchronous = FULL", "synchronous FULL"},
		{fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit), "journal size limit"},
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.sql); err != nil {
			return fmt.Errorf("backup: set pragma %s: %w", p.desc, err)
		}

		logger.Debug("pragma set", "pragma", p.desc)
	}

	return nil
}

func (s *Store) prepareStatements(ctx context.Context) error {
	var err error

	s.saveStmt, err = s.db.PrepareContext(ctx, `
		INSERT INTO backups (key, owner, blob, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}

	s.loadStmt, err = s.db.PrepareContext(ctx,
		"SELECT owner, blob FROM backups WHERE key = ?")
	if err != nil {
		return err
	}

	s.deleteStmt, err = s.db.PrepareContext(ctx,
		"DELETE FROM backups WHERE key = ?")

	return err
}

// Save stores a blob under key for the given owner. Overwriting a key that
// belongs to a different owner fails with ErrOwnerMismatch. Owner and key
// are NFC-normalized so visually identical identifiers hit the same row.
func (s *Store) Save(ctx context.Context, owner, key string, blob []byte) error {
	owner, key, err := normalizeIdentifiers(owner, key)
	if err != nil {
		return err
	}

	if err := s.checkOwner(ctx, owner, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	updatedAt := time.Now().UTC().Format(time.RFC3339)

	if _, err := s.saveStmt.ExecContext(ctx, key, owner, blob, updatedAt); err != nil {
		return fmt.Errorf("backup: save %q: %w", key, err)
	}

	s.logger.Info("backup saved",
		slog.String("key", key),
		slog.Int("bytes", len(blob)),
	)

	return nil
}

// Load returns the blob stored under key after validating the owner.
// A missing key returns ErrNotFound.
func (s *Store) Load(ctx context.Context, owner, key string) ([]byte, error) {
	owner, key, err := normalizeIdentifiers(owner, key)
	if err != nil {
		return nil, err
	}

	var storedOwner string

	var blob []byte

	err = s.loadStmt.QueryRowContext(ctx, key).Scan(&storedOwner, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("backup: load %q: %w", key, err)
	}

	if storedOwner != owner {
		return nil, ErrOwnerMismatch
	}

	return blob, nil
}

// Delete removes the blob stored under key after validating the owner.
// Deleting a missing key returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, owner, key string) error {
	owner, key, err := normalizeIdentifiers(owner, key)
	if err != nil {
		return err
	}

	if err := s.checkOwner(ctx, owner, key); err != nil {
		return err
	}

	if _, err := s.deleteStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("backup: delete %q: %w", key, err)
	}

	s.logger.Info("backup deleted", slog.String("key", key))

	return nil
}

// Close releases prepared statements and the database handle.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.deleteStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// checkOwner verifies that key either does not exist (ErrNotFound) or
// belongs to owner (nil).
func (s *Store) checkOwner(ctx context.Context, owner, key string) error {
	var storedOwner string

	err := s.db.QueryRowContext(ctx,
		"SELECT owner FROM backups WHERE key = ?", key).Scan(&storedOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("backup: check owner of %q: %w", key, err)
	}

	if storedOwner != owner {
		return ErrOwnerMismatch
	}

	return nil
}

// normalizeIdentifiers NFC-normalizes owner and key and rejects an empty
// owner, the one input the store cannot default.
func normalizeIdentifiers(owner, key string) (string, string, error) {
	owner = norm.NFC.String(owner)
	if owner == "" {
		return "", "", ErrEmptyOwner
	}

	return owner, norm.NFC.String(key), nil
}
