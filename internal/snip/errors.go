package snip

import (
	"fmt"
	"strings"
)

// NotFoundError reports that an identifier fragment matched nothing in its
// namespace.
type NotFoundError struct {
	Fragment string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no identifier matches %q", e.Fragment)
}

// AmbiguousError reports that an identifier fragment matched more than one
// identifier. Candidates holds every match so callers can present them.
type AmbiguousError struct {
	Fragment   string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches %d identifiers: %s",
		e.Fragment, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// EmptyQueryError reports that a search query contained no usable terms
// after normalization. An empty query is an error, not a match-everything.
type EmptyQueryError struct{}

func (e *EmptyQueryError) Error() string {
	return "query contains no searchable terms"
}

// StorageError wraps a failure in the underlying storage substrate. Storage
// failures are fatal to the current operation and never retried here; the
// substrate's own durability handles transient conditions.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
