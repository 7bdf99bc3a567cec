package snip

// Database provides an interface for the persistent document store and term
// index. Implementations must make document creation and index writes a
// single atomic unit.
type Database interface {
	// Document operations

	// CreateDocumentWithIndex persists a new document together with one
	// index entry per distinct term, in one transaction. Either the
	// document row and its full set of index entries exist afterwards, or
	// neither does.
	CreateDocumentWithIndex(doc *Document, termCounts map[string]int) error

	// GetDocument returns a document by its full identifier, or nil if
	// no such document exists.
	GetDocument(id DocumentID) (*Document, error)

	// ListDocuments returns all documents in creation order.
	ListDocuments() ([]*Document, error)

	// RenameDocument updates a document's display name. The body and the
	// index are untouched.
	RenameDocument(id DocumentID, name string) error

	// FindDocumentIDsByPrefix returns all document identifiers starting
	// with fragment, sorted. An empty fragment matches every identifier.
	FindDocumentIDsByPrefix(fragment string) ([]DocumentID, error)

	// Term index operations

	// FindTermMatches returns every index entry whose term equals one of
	// the given terms.
	FindTermMatches(terms []string) ([]TermMatch, error)

	// Attachment operations

	// CreateAttachment persists an attachment. The parent document must
	// exist.
	CreateAttachment(a *Attachment) error

	// GetAttachment returns an attachment with its data, or nil if absent.
	GetAttachment(id AttachmentID) (*Attachment, error)

	// ListAttachments returns attachment metadata (no data) for a parent
	// document, in creation order.
	ListAttachments(parent DocumentID) ([]*Attachment, error)

	// RemoveAttachment deletes an attachment by its full identifier.
	RemoveAttachment(id AttachmentID) error

	// FindAttachmentIDsByPrefix returns all attachment identifiers
	// starting with fragment, sorted.
	FindAttachmentIDsByPrefix(fragment string) ([]AttachmentID, error)

	// BackupTo writes a complete snapshot of the store to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
