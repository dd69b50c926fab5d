package transcripts

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/transcription"
)

func seedDocument(t *testing.T, repo *GormRepository, userID, name string, updated time.Time) *Document {
	t.Helper()
	doc := &Document{UserID: userID, FileName: name, BlobPath: "audio/" + name, Status: StatusQueued}
	doc.UpdatedAt = updated
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return doc
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("error %v is not an AppError", err)
	}
	if appErr.Code != code {
		t.Errorf("code = %s, want %s", appErr.Code, code)
	}
}

func TestRepositoryListForUser(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedDocument(t, repo, testUser, "old.wav", base)
	seedDocument(t, repo, testUser, "new.wav", base.Add(time.Hour))
	seedDocument(t, repo, "someone-else", "theirs.wav", base.Add(2*time.Hour))

	docs, err := repo.ListForUser(ctx, testUser)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].FileName != "new.wav" || docs[1].FileName != "old.wav" {
		t.Errorf("order = %s, %s", docs[0].FileName, docs[1].FileName)
	}

	empty, err := repo.ListForUser(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Errorf("ListForUser(nobody) = %v, %v", empty, err)
	}
}

func TestRepositoryGetForUser(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	doc := seedDocument(t, repo, testUser, "a.mp3", time.Now())

	got, err := repo.GetForUser(ctx, testUser, doc.ID)
	if err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if got.FileName != "a.mp3" || got.Status != StatusQueued {
		t.Errorf("got %+v", got)
	}

	_, err = repo.GetForUser(ctx, "intruder", doc.ID)
	assertCode(t, err, apperrors.ErrCodeNotFound)

	_, err = repo.Get(ctx, "missing")
	assertCode(t, err, apperrors.ErrCodeNotFound)
}

func TestRepositoryProgressAndFail(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	doc := seedDocument(t, repo, testUser, "a.mp3", time.Now())

	if err := repo.UpdateProgress(ctx, doc.ID, StatusProcessing, 10); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	got, _ := repo.Get(ctx, doc.ID)
	if got.Status != StatusProcessing || got.PercentageComplete != 10 {
		t.Errorf("after progress: %s %d", got.Status, got.PercentageComplete)
	}

	if err := repo.Fail(ctx, doc.ID, "speech service is not configured"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	got, _ = repo.Get(ctx, doc.ID)
	if got.Status != StatusFailed || got.Error != "speech service is not configured" {
		t.Errorf("after fail: %s %q", got.Status, got.Error)
	}

	assertCode(t, repo.Fail(ctx, "missing", "x"), apperrors.ErrCodeNotFound)
	assertCode(t, repo.UpdateProgress(ctx, "missing", StatusProcessing, 10), apperrors.ErrCodeNotFound)
}

func TestRepositoryCompleteReplacesChunks(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	doc := seedDocument(t, repo, testUser, "a.mp3", time.Now())

	first := []Chunk{
		{DocumentID: doc.ID, Sequence: 1, PageNumber: 1, Text: "one"},
		{DocumentID: doc.ID, Sequence: 2, PageNumber: 2, Text: "two"},
		{DocumentID: doc.ID, Sequence: 3, PageNumber: 3, Text: "three"},
	}
	if err := repo.Complete(ctx, doc.ID, "en-US", first); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	second := []Chunk{
		{DocumentID: doc.ID, Sequence: 2, PageNumber: 2, Text: "beta", Start: 1.5, End: 3},
		{DocumentID: doc.ID, Sequence: 1, PageNumber: 1, Text: "alpha", End: 1.5},
	}
	if err := repo.Complete(ctx, doc.ID, "de-DE", second); err != nil {
		t.Fatalf("Complete again: %v", err)
	}

	chunks, err := repo.Chunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Text != "alpha" || chunks[1].Text != "beta" || chunks[1].Start != 1.5 {
		t.Errorf("chunks = %+v", chunks)
	}

	got, _ := repo.Get(ctx, doc.ID)
	if got.Status != StatusComplete || got.PercentageComplete != 100 || got.NumChunks != 2 || got.Locale != "de-DE" {
		t.Errorf("document = %+v", got)
	}
}

func TestRepositoryCompleteMissingDocumentRollsBack(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()

	err := repo.Complete(ctx, "missing", "", []Chunk{{DocumentID: "missing", Sequence: 1, Text: "x"}})
	assertCode(t, err, apperrors.ErrCodeNotFound)

	chunks, err := repo.Chunks(ctx, "missing")
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks written outside the transaction: %+v", chunks)
	}
}

func TestChunksFrom(t *testing.T) {
	t.Run("segments", func(t *testing.T) {
		chunks := chunksFrom("d1", &transcription.TranscriptionResponse{
			Segments: []transcription.Segment{
				{Start: 0, End: 1, Text: "hello", Speaker: "A"},
				{Start: 1, End: 2, Text: "world"},
			},
		})
		if len(chunks) != 2 {
			t.Fatalf("got %d chunks", len(chunks))
		}
		if chunks[1].Sequence != 2 || chunks[1].PageNumber != 2 || chunks[0].Speaker != "A" || chunks[1].DocumentID != "d1" {
			t.Errorf("chunks = %+v", chunks)
		}
	})
	t.Run("text only", func(t *testing.T) {
		chunks := chunksFrom("d1", &transcription.TranscriptionResponse{Text: "all of it", Duration: 4})
		if len(chunks) != 1 || chunks[0].Text != "all of it" || chunks[0].End != 4 {
			t.Errorf("chunks = %+v", chunks)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if chunks := chunksFrom("d1", &transcription.TranscriptionResponse{}); len(chunks) != 0 {
			t.Errorf("chunks = %+v", chunks)
		}
	})
}
