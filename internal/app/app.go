package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"snip-go/internal/config"
	"snip-go/internal/database"
	"snip-go/internal/encryption"
	"snip-go/internal/snip"
	"snip-go/internal/token"
	"snip-go/internal/vault"
)

// snapshotName is the vault object a database backup is stored under.
const snapshotName = "snip.db.age"

// App is the application layer between the CLI and the snip service. It
// constructs all dependencies from config, exposes the high-level
// operations, and manages the database lifecycle on Close.
type App struct {
	cfg     *config.Config
	db      snip.Database
	service *snip.Service
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (used as the log correlation id
// together with a timestamp). The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	stemmer, err := token.NewStemmerFromConfig(cfg.Stemmer)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating stemmer: %w", err)
	}

	opID := operation + "-" + time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := snip.NewService(db, stemmer, &slogAdapter{l: logger}, snip.RealClock{}, snip.UUIDGenerator{})

	return &App{
		cfg:     cfg,
		db:      db,
		service: svc,
		logFile: logFile,
	}, nil
}

// ContextWords returns the configured snippet window width.
func (a *App) ContextWords() int {
	if a.cfg.Search.ContextWords > 0 {
		return a.cfg.Search.ContextWords
	}
	return 4
}

// Add ingests a new document and returns it.
func (a *App) Add(text, name string) (*snip.Document, error) {
	return a.service.Add(text, name)
}

// Get loads the document matching the identifier fragment.
func (a *App) Get(fragment string) (*snip.Document, error) {
	return a.service.Get(fragment)
}

// List returns all documents in creation order.
func (a *App) List() ([]*snip.Document, error) {
	return a.service.List()
}

// Rename updates the display name of the document matching fragment.
func (a *App) Rename(fragment, name string) error {
	return a.service.Rename(fragment, name)
}

// Search runs a ranked keyword search with the configured snippet window.
func (a *App) Search(query string) ([]snip.SearchResult, error) {
	return a.service.Search(query, a.ContextWords())
}

// Attach stores data as an attachment of the document matching
// parentFragment.
func (a *App) Attach(parentFragment, fileName string, data []byte) (*snip.Attachment, error) {
	return a.service.Attach(parentFragment, fileName, data)
}

// ReadAttachment loads the attachment matching fragment, data included.
func (a *App) ReadAttachment(fragment string) (*snip.Attachment, error) {
	return a.service.ReadAttachment(fragment)
}

// ListAttachments returns attachment metadata for the document matching
// parentFragment.
func (a *App) ListAttachments(parentFragment string) ([]*snip.Attachment, error) {
	return a.service.ListAttachments(parentFragment)
}

// RemoveAttachment deletes the attachment matching fragment.
func (a *App) RemoveAttachment(fragment string) error {
	return a.service.RemoveAttachment(fragment)
}

// Backup snapshots the database, encrypts the snapshot with the public key,
// and uploads it to the first configured vault.
func (a *App) Backup() error {
	if len(a.cfg.Vaults) == 0 {
		return fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(a.cfg.Vaults[0])
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		return fmt.Errorf("encryption keys not set up: run 'snip config keys' first")
	}

	// Snapshot the database to a temp file.
	plainFile, err := os.CreateTemp("", "snip-db-backup-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file for db snapshot: %w", err)
	}
	plainPath := plainFile.Name()
	plainFile.Close()
	os.Remove(plainPath) // VACUUM INTO refuses to overwrite an existing file
	defer os.Remove(plainPath)

	if err := a.db.BackupTo(plainPath); err != nil {
		return fmt.Errorf("snapshotting database: %w", err)
	}

	// Encrypt the snapshot into a second temp file so the upload size is
	// known up front.
	encFile, err := os.CreateTemp("", "snip-db-backup-*.age")
	if err != nil {
		return fmt.Errorf("creating temp file for encrypted snapshot: %w", err)
	}
	encPath := encFile.Name()
	defer os.Remove(encPath)

	plain, err := os.Open(plainPath)
	if err != nil {
		encFile.Close()
		return fmt.Errorf("opening db snapshot: %w", err)
	}

	if err := enc.Encrypt(plain, encFile); err != nil {
		plain.Close()
		encFile.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	plain.Close()
	if err := encFile.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}

	f, err := os.Open(encPath)
	if err != nil {
		return fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat encrypted snapshot: %w", err)
	}

	if err := v.PutSnapshot(snapshotName, f, info.Size()); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}

	return nil
}

// Close closes the database and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// SetupKeys performs one-time encryption key generation. Fails if keys
// already exist so they cannot be overwritten by accident.
func SetupKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	return nil
}

// RestoreDatabase downloads the latest snapshot from the vault, decrypts it
// with the passphrase-unlocked private key, and writes it as the current
// database file. The database must not be open; this is a standalone
// recovery path. Returns the restored database path.
func RestoreDatabase(cfg *config.Config, passphrase string) (string, error) {
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir == "" {
		return "", fmt.Errorf("restore requires a sqlite database with data_dir set")
	}
	if len(cfg.Vaults) == 0 {
		return "", fmt.Errorf("no vaults configured")
	}

	v, err := vault.NewVaultFromConfig(cfg.Vaults[0])
	if err != nil {
		return "", fmt.Errorf("creating vault: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}

	ctx, err := enc.Unlock(passphrase)
	if err != nil {
		return "", fmt.Errorf("unlocking private key: %w", err)
	}

	// Download the encrypted snapshot.
	encFile, err := os.CreateTemp("", "snip-db-restore-*.age")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	encPath := encFile.Name()
	defer os.Remove(encPath)

	if err := v.GetSnapshot(snapshotName, encFile); err != nil {
		encFile.Close()
		return "", fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := encFile.Close(); err != nil {
		return "", fmt.Errorf("closing downloaded snapshot: %w", err)
	}

	// Decrypt into the database location.
	if err := os.MkdirAll(cfg.Database.DataDir, 0700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(cfg.Database.DataDir, "snip.db")

	in, err := os.Open(encPath)
	if err != nil {
		return "", fmt.Errorf("opening downloaded snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dbPath)
	if err != nil {
		return "", fmt.Errorf("creating database file: %w", err)
	}

	if err := ctx.Decrypt(in, out); err != nil {
		out.Close()
		return "", fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing database file: %w", err)
	}

	return dbPath, nil
}
