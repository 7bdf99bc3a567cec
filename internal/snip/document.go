package snip

import "time"

// DocumentID identifies a stored document. Document and attachment
// identifiers are distinct types so a fragment resolved in one namespace can
// never be used to look up the other.
type DocumentID string

func (id DocumentID) String() string { return string(id) }

// AttachmentID identifies a binary attachment.
type AttachmentID string

func (id AttachmentID) String() string { return string(id) }

// Document is an immutable text document. The body never changes after
// ingestion; Name is the only mutable field. WordCount is the number of
// indexed terms and is cached for scoring.
type Document struct {
	ID        DocumentID
	Name      string
	CreatedAt time.Time // retains the timezone offset it was created with
	Body      string
	WordCount int
}

// Attachment is binary data attached to a document. Attachments are
// immutable once stored and removed only by explicit request; examining or
// removing the parent never cascades.
type Attachment struct {
	ID         AttachmentID
	DocumentID DocumentID
	Name       string
	Size       int64
	CreatedAt  time.Time
	Data       []byte // nil in listings; populated by GetAttachment
}

// TermMatch is one term-index entry matched by a query scan.
type TermMatch struct {
	DocumentID DocumentID
	Term       string
	Frequency  int
}
