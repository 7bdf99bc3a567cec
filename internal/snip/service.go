package snip

import (
	"fmt"
	"strings"

	"snip-go/internal/token"
)

// nameWordLimit is the number of leading body words used when a document is
// added without an explicit name.
const nameWordLimit = 5

// Service is the orchestration layer that coordinates the normalizer, the
// store, and the query engine to perform the high-level operations needed by
// the CLI. It never prints; presentation belongs to the caller.
type Service struct {
	database Database
	stemmer  token.Stemmer
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a new Service with the provided dependencies.
func NewService(database Database, stemmer token.Stemmer, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		database: database,
		stemmer:  stemmer,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// Add ingests a new document: normalizes the body, aggregates term counts,
// and persists the document together with its index entries atomically.
// When name is empty it is derived from the leading words of the body.
func (s *Service) Add(text, name string) (*Document, error) {
	terms := token.Normalize(text, s.stemmer)

	if name == "" {
		name = deriveName(text)
	}

	doc := &Document{
		ID:        DocumentID(s.idgen.New()),
		Name:      name,
		CreatedAt: s.clock.Now(),
		Body:      text,
		WordCount: len(terms),
	}

	if err := s.database.CreateDocumentWithIndex(doc, token.Frequencies(terms)); err != nil {
		return nil, fmt.Errorf("ingesting document: %w", err)
	}

	s.logger.Info("document added", "id", doc.ID, "words", doc.WordCount)
	return doc, nil
}

// Get resolves a possibly-abbreviated document identifier and loads the
// document.
func (s *Service) Get(fragment string) (*Document, error) {
	id, err := s.ResolveDocument(fragment)
	if err != nil {
		return nil, err
	}

	doc, err := s.database.GetDocument(id)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	if doc == nil {
		return nil, &NotFoundError{Fragment: fragment}
	}
	return doc, nil
}

// List returns all documents in creation order.
func (s *Service) List() ([]*Document, error) {
	docs, err := s.database.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// Rename updates a document's display name. The body and index are immutable
// and stay untouched.
func (s *Service) Rename(fragment, name string) error {
	id, err := s.ResolveDocument(fragment)
	if err != nil {
		return err
	}
	if err := s.database.RenameDocument(id, name); err != nil {
		return fmt.Errorf("renaming document: %w", err)
	}
	s.logger.Info("document renamed", "id", id, "name", name)
	return nil
}

// Search normalizes the query, scans the term index for candidates, scores
// and ranks them, and extracts context snippets of window words on each side
// of every match. A query with no usable terms returns EmptyQueryError; a
// query matching nothing returns an empty result set and no error.
func (s *Service) Search(query string, window int) ([]SearchResult, error) {
	queryTerms := make(map[string]bool)
	for _, t := range token.Normalize(query, s.stemmer) {
		queryTerms[t.Text] = true
	}
	if len(queryTerms) == 0 {
		return nil, &EmptyQueryError{}
	}

	terms := make([]string, 0, len(queryTerms))
	for t := range queryTerms {
		terms = append(terms, t)
	}

	matches, err := s.database.FindTermMatches(terms)
	if err != nil {
		return nil, fmt.Errorf("scanning term index: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	// Group the matched frequencies per candidate document.
	perDoc := make(map[DocumentID]map[string]int)
	for _, m := range matches {
		if perDoc[m.DocumentID] == nil {
			perDoc[m.DocumentID] = make(map[string]int)
		}
		perDoc[m.DocumentID][m.Term] = m.Frequency
	}

	results := make([]SearchResult, 0, len(perDoc))
	for id, freqs := range perDoc {
		doc, err := s.database.GetDocument(id)
		if err != nil {
			return nil, fmt.Errorf("loading candidate %s: %w", id, err)
		}
		if doc == nil {
			// Index entry without a document row would violate the
			// ingestion transaction; treat as corruption.
			return nil, &StorageError{Op: "loading candidate", Err: fmt.Errorf("indexed document %s missing", id)}
		}

		results = append(results, SearchResult{
			Document:        doc,
			Score:           scoreDocument(freqs, doc.WordCount),
			TermFrequencies: freqs,
			Snippets:        ExtractContext(doc.Body, matchPositions(doc.Body, queryTerms, s.stemmer), window),
		})
	}

	rankResults(results)
	s.logger.Debug("search complete", "terms", len(terms), "hits", len(results))
	return results, nil
}

// Attach stores binary data as an attachment of the document matching
// parentFragment. Fails if the parent does not resolve.
func (s *Service) Attach(parentFragment, fileName string, data []byte) (*Attachment, error) {
	parent, err := s.ResolveDocument(parentFragment)
	if err != nil {
		return nil, err
	}

	a := &Attachment{
		ID:         AttachmentID(s.idgen.New()),
		DocumentID: parent,
		Name:       fileName,
		Size:       int64(len(data)),
		CreatedAt:  s.clock.Now(),
		Data:       data,
	}

	if err := s.database.CreateAttachment(a); err != nil {
		return nil, fmt.Errorf("storing attachment: %w", err)
	}

	s.logger.Info("attachment added", "id", a.ID, "parent", parent, "size", a.Size)
	return a, nil
}

// ReadAttachment resolves a possibly-abbreviated attachment identifier and
// loads the attachment including its data.
func (s *Service) ReadAttachment(fragment string) (*Attachment, error) {
	id, err := s.ResolveAttachment(fragment)
	if err != nil {
		return nil, err
	}

	a, err := s.database.GetAttachment(id)
	if err != nil {
		return nil, fmt.Errorf("loading attachment: %w", err)
	}
	if a == nil {
		return nil, &NotFoundError{Fragment: fragment}
	}
	return a, nil
}

// ListAttachments returns attachment metadata for the document matching
// parentFragment, in creation order.
func (s *Service) ListAttachments(parentFragment string) ([]*Attachment, error) {
	parent, err := s.ResolveDocument(parentFragment)
	if err != nil {
		return nil, err
	}

	attachments, err := s.database.ListAttachments(parent)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	return attachments, nil
}

// RemoveAttachment deletes the attachment matching fragment. The parent
// document is untouched.
func (s *Service) RemoveAttachment(fragment string) error {
	id, err := s.ResolveAttachment(fragment)
	if err != nil {
		return err
	}
	if err := s.database.RemoveAttachment(id); err != nil {
		return fmt.Errorf("removing attachment: %w", err)
	}
	s.logger.Info("attachment removed", "id", id)
	return nil
}

// ResolveDocument resolves an identifier fragment in the document namespace.
func (s *Service) ResolveDocument(fragment string) (DocumentID, error) {
	ids, err := s.database.FindDocumentIDsByPrefix(fragment)
	if err != nil {
		return "", fmt.Errorf("scanning document identifiers: %w", err)
	}
	return Resolve(fragment, ids)
}

// ResolveAttachment resolves an identifier fragment in the attachment
// namespace.
func (s *Service) ResolveAttachment(fragment string) (AttachmentID, error) {
	ids, err := s.database.FindAttachmentIDsByPrefix(fragment)
	if err != nil {
		return "", fmt.Errorf("scanning attachment identifiers: %w", err)
	}
	return Resolve(fragment, ids)
}

// deriveName builds a display name from the leading words of the body.
func deriveName(text string) string {
	words := token.Words(text)
	if len(words) > nameWordLimit {
		words = words[:nameWordLimit]
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}
