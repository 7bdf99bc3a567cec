package snip

import "io"

// Vault stores database snapshots off to the side for disaster recovery.
// Operations stream through io.Reader/io.Writer so snapshots never need to
// be held in memory whole.
type Vault interface {
	// PutSnapshot stores a named snapshot. Storing the same name again
	// replaces the previous snapshot. size is the number of bytes that
	// will be read from r.
	PutSnapshot(name string, r io.Reader, size int64) error

	// GetSnapshot retrieves a named snapshot and writes it to w.
	GetSnapshot(name string, w io.Writer) error

	// ValidateSetup verifies that the vault is accessible and properly
	// configured.
	ValidateSetup() error
}
