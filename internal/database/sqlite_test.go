package database

import (
	"errors"
	"testing"
	"time"

	"snip-go/internal/snip"
)

// newTestDB creates a migrated in-memory database.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func testDocument(id string, created time.Time) *snip.Document {
	return &snip.Document{
		ID:        snip.DocumentID(id),
		Name:      "test document",
		CreatedAt: created,
		Body:      "the quick brown fox",
		WordCount: 4,
	}
}

func TestSQLiteDatabase_CreateDocumentWithIndex(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("stores document and index rows", func(t *testing.T) {
		db := newTestDB(t)

		doc := testDocument("doc-1", created)
		err := db.CreateDocumentWithIndex(doc, map[string]int{"the": 1, "quick": 1, "brown": 1, "fox": 1})
		if err != nil {
			t.Fatalf("CreateDocumentWithIndex() error = %v", err)
		}

		got, err := db.GetDocument("doc-1")
		if err != nil {
			t.Fatalf("GetDocument() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetDocument() = nil, want document")
		}
		if got.Body != doc.Body {
			t.Errorf("Body = %q, want %q", got.Body, doc.Body)
		}
		if got.WordCount != 4 {
			t.Errorf("WordCount = %d, want 4", got.WordCount)
		}

		matches, err := db.FindTermMatches([]string{"fox"})
		if err != nil {
			t.Fatalf("FindTermMatches() error = %v", err)
		}
		if len(matches) != 1 || matches[0].Frequency != 1 {
			t.Errorf("matches = %+v, want one fox match with frequency 1", matches)
		}
	})

	t.Run("index frequencies sum to the word count", func(t *testing.T) {
		db := newTestDB(t)

		doc := &snip.Document{
			ID:        "doc-sum",
			Name:      "sum check",
			CreatedAt: created,
			Body:      "a b a c b a",
			WordCount: 6,
		}
		counts := map[string]int{"a": 3, "b": 2, "c": 1}
		if err := db.CreateDocumentWithIndex(doc, counts); err != nil {
			t.Fatalf("CreateDocumentWithIndex() error = %v", err)
		}

		matches, err := db.FindTermMatches([]string{"a", "b", "c"})
		if err != nil {
			t.Fatalf("FindTermMatches() error = %v", err)
		}

		sum := 0
		for _, m := range matches {
			sum += m.Frequency
		}
		if sum != doc.WordCount {
			t.Errorf("sum of indexed frequencies = %d, want %d", sum, doc.WordCount)
		}
	})

	t.Run("duplicate identifier leaves no partial index", func(t *testing.T) {
		db := newTestDB(t)

		first := testDocument("doc-dup", created)
		if err := db.CreateDocumentWithIndex(first, map[string]int{"fox": 1}); err != nil {
			t.Fatalf("first CreateDocumentWithIndex() error = %v", err)
		}

		second := testDocument("doc-dup", created)
		second.Body = "entirely different words"
		err := db.CreateDocumentWithIndex(second, map[string]int{"entire": 1, "differ": 1, "word": 1})
		if err == nil {
			t.Fatal("second CreateDocumentWithIndex() expected error")
		}

		var storageErr *snip.StorageError
		if !errors.As(err, &storageErr) {
			t.Errorf("error = %v, want StorageError", err)
		}

		// The failed insert must not leave index rows behind.
		matches, err := db.FindTermMatches([]string{"entire", "differ", "word"})
		if err != nil {
			t.Fatalf("FindTermMatches() error = %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("found %d index rows from the failed insert, want 0", len(matches))
		}

		got, err := db.GetDocument("doc-dup")
		if err != nil {
			t.Fatalf("GetDocument() error = %v", err)
		}
		if got.Body != first.Body {
			t.Errorf("Body = %q, want the original %q", got.Body, first.Body)
		}
	})
}

func TestSQLiteDatabase_GetDocument(t *testing.T) {
	t.Run("returns nil for unknown id", func(t *testing.T) {
		db := newTestDB(t)

		got, err := db.GetDocument("nope")
		if err != nil {
			t.Fatalf("GetDocument() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetDocument() = %+v, want nil", got)
		}
	})

	t.Run("round-trips the creation timestamp offset", func(t *testing.T) {
		db := newTestDB(t)

		created := time.Date(2024, 6, 1, 9, 30, 0, 123456789, time.FixedZone("", 2*60*60))
		doc := testDocument("doc-tz", created)
		if err := db.CreateDocumentWithIndex(doc, map[string]int{"fox": 1}); err != nil {
			t.Fatalf("CreateDocumentWithIndex() error = %v", err)
		}

		got, err := db.GetDocument("doc-tz")
		if err != nil {
			t.Fatalf("GetDocument() error = %v", err)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
		}
		_, offset := got.CreatedAt.Zone()
		if offset != 2*60*60 {
			t.Errorf("offset = %d, want 7200", offset)
		}
	})
}

func TestSQLiteDatabase_ListDocuments(t *testing.T) {
	db := newTestDB(t)

	// Insert out of timestamp order; listing follows insertion order.
	later := testDocument("doc-b", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	earlier := testDocument("doc-a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	if err := db.CreateDocumentWithIndex(later, map[string]int{"fox": 1}); err != nil {
		t.Fatalf("CreateDocumentWithIndex() error = %v", err)
	}
	if err := db.CreateDocumentWithIndex(earlier, map[string]int{"fox": 1}); err != nil {
		t.Fatalf("CreateDocumentWithIndex() error = %v", err)
	}

	docs, err := db.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[0].ID != "doc-b" || docs[1].ID != "doc-a" {
		t.Errorf("order = %s, %s; want insertion order", docs[0].ID, docs[1].ID)
	}
}

func TestSQLiteDatabase_RenameDocument(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("updates the name", func(t *testing.T) {
		db := newTestDB(t)

		doc := testDocument("doc-1", created)
		if err := db.CreateDocumentWithIndex(doc, map[string]int{"fox": 1}); err != nil {
			t.Fatalf("CreateDocumentWithIndex() error = %v", err)
		}

		if err := db.RenameDocument("doc-1", "renamed"); err != nil {
			t.Fatalf("RenameDocument() error = %v", err)
		}

		got, _ := db.GetDocument("doc-1")
		if got.Name != "renamed" {
			t.Errorf("Name = %q, want %q", got.Name, "renamed")
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		db := newTestDB(t)

		err := db.RenameDocument("nope", "name")

		var notFound *snip.NotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("RenameDocument() error = %v, want NotFoundError", err)
		}
	})
}

func TestSQLiteDatabase_FindDocumentIDsByPrefix(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	db := newTestDB(t)
	for _, id := range []string{"ab12", "ab34", "ff00"} {
		if err := db.CreateDocumentWithIndex(testDocument(id, created), map[string]int{"fox": 1}); err != nil {
			t.Fatalf("CreateDocumentWithIndex(%s) error = %v", id, err)
		}
	}

	t.Run("returns all ids sharing the prefix", func(t *testing.T) {
		ids, err := db.FindDocumentIDsByPrefix("ab")
		if err != nil {
			t.Fatalf("FindDocumentIDsByPrefix() error = %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("len(ids) = %d, want 2", len(ids))
		}
	})

	t.Run("empty prefix returns everything", func(t *testing.T) {
		ids, err := db.FindDocumentIDsByPrefix("")
		if err != nil {
			t.Fatalf("FindDocumentIDsByPrefix() error = %v", err)
		}
		if len(ids) != 3 {
			t.Errorf("len(ids) = %d, want 3", len(ids))
		}
	})

	t.Run("percent is literal, not a wildcard", func(t *testing.T) {
		ids, err := db.FindDocumentIDsByPrefix("%")
		if err != nil {
			t.Fatalf("FindDocumentIDsByPrefix() error = %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("len(ids) = %d, want 0", len(ids))
		}
	})
}

func TestSQLiteDatabase_FindTermMatches(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	db := newTestDB(t)
	if err := db.CreateDocumentWithIndex(testDocument("doc-1", created),
		map[string]int{"the": 1, "fox": 2}); err != nil {
		t.Fatalf("CreateDocumentWithIndex() error = %v", err)
	}
	if err := db.CreateDocumentWithIndex(testDocument("doc-2", created),
		map[string]int{"fox": 1, "dog": 1}); err != nil {
		t.Fatalf("CreateDocumentWithIndex() error = %v", err)
	}

	t.Run("returns one row per document per term", func(t *testing.T) {
		matches, err := db.FindTermMatches([]string{"fox"})
		if err != nil {
			t.Fatalf("FindTermMatches() error = %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("len(matches) = %d, want 2", len(matches))
		}
	})

	t.Run("multiple terms collect all rows", func(t *testing.T) {
		matches, err := db.FindTermMatches([]string{"the", "dog"})
		if err != nil {
			t.Fatalf("FindTermMatches() error = %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("len(matches) = %d, want 2", len(matches))
		}
	})

	t.Run("unknown term matches nothing", func(t *testing.T) {
		matches, err := db.FindTermMatches([]string{"zebra"})
		if err != nil {
			t.Fatalf("FindTermMatches() error = %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("len(matches) = %d, want 0", len(matches))
		}
	})

	t.Run("no terms matches nothing", func(t *testing.T) {
		matches, err := db.FindTermMatches(nil)
		if err != nil {
			t.Fatalf("FindTermMatches() error = %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("len(matches) = %d, want 0", len(matches))
		}
	})
}

func TestSQLiteDatabase_Attachments(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) *SQLiteDatabase {
		t.Helper()
		db := newTestDB(t)
		if err := db.CreateDocumentWithIndex(testDocument("doc-1", created),
			map[string]int{"fox": 1}); err != nil {
			t.Fatalf("CreateDocumentWithIndex() error = %v", err)
		}
		return db
	}

	attachment := func(id, name string, data []byte) *snip.Attachment {
		return &snip.Attachment{
			ID:         snip.AttachmentID(id),
			DocumentID: "doc-1",
			Name:       name,
			Size:       int64(len(data)),
			CreatedAt:  created,
			Data:       data,
		}
	}

	t.Run("create and get round-trips data", func(t *testing.T) {
		db := setup(t)

		data := []byte{0x00, 0x01, 0xff}
		if err := db.CreateAttachment(attachment("att-1", "file.bin", data)); err != nil {
			t.Fatalf("CreateAttachment() error = %v", err)
		}

		got, err := db.GetAttachment("att-1")
		if err != nil {
			t.Fatalf("GetAttachment() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetAttachment() = nil, want attachment")
		}
		if string(got.Data) != string(data) {
			t.Errorf("Data = %v, want %v", got.Data, data)
		}
		if got.Size != 3 {
			t.Errorf("Size = %d, want 3", got.Size)
		}
	})

	t.Run("get unknown id returns nil", func(t *testing.T) {
		db := setup(t)

		got, err := db.GetAttachment("nope")
		if err != nil {
			t.Fatalf("GetAttachment() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetAttachment() = %+v, want nil", got)
		}
	})

	t.Run("create with unknown parent fails", func(t *testing.T) {
		db := setup(t)

		a := attachment("att-orphan", "file.bin", []byte("x"))
		a.DocumentID = "missing-doc"
		if err := db.CreateAttachment(a); err == nil {
			t.Error("CreateAttachment() expected foreign key error")
		}
	})

	t.Run("list excludes data and follows insertion order", func(t *testing.T) {
		db := setup(t)

		db.CreateAttachment(attachment("att-1", "first.txt", []byte("aaa")))
		db.CreateAttachment(attachment("att-2", "second.txt", []byte("bb")))

		atts, err := db.ListAttachments("doc-1")
		if err != nil {
			t.Fatalf("ListAttachments() error = %v", err)
		}
		if len(atts) != 2 {
			t.Fatalf("len(atts) = %d, want 2", len(atts))
		}
		if atts[0].Name != "first.txt" || atts[1].Name != "second.txt" {
			t.Errorf("order = %s, %s", atts[0].Name, atts[1].Name)
		}
		if atts[0].Data != nil {
			t.Error("ListAttachments() loaded data")
		}
		if atts[0].Size != 3 {
			t.Errorf("Size = %d, want 3", atts[0].Size)
		}
	})

	t.Run("remove deletes the row", func(t *testing.T) {
		db := setup(t)

		db.CreateAttachment(attachment("att-1", "file.bin", []byte("x")))
		if err := db.RemoveAttachment("att-1"); err != nil {
			t.Fatalf("RemoveAttachment() error = %v", err)
		}

		got, err := db.GetAttachment("att-1")
		if err != nil {
			t.Fatalf("GetAttachment() error = %v", err)
		}
		if got != nil {
			t.Error("attachment still present after remove")
		}
	})

	t.Run("remove unknown id is not found", func(t *testing.T) {
		db := setup(t)

		err := db.RemoveAttachment("nope")

		var notFound *snip.NotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("RemoveAttachment() error = %v, want NotFoundError", err)
		}
	})

	t.Run("prefix scan covers attachments", func(t *testing.T) {
		db := setup(t)

		db.CreateAttachment(attachment("ab12", "a.txt", []byte("a")))
		db.CreateAttachment(attachment("ab34", "b.txt", []byte("b")))

		ids, err := db.FindAttachmentIDsByPrefix("ab")
		if err != nil {
			t.Fatalf("FindAttachmentIDsByPrefix() error = %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("len(ids) = %d, want 2", len(ids))
		}
	})
}
