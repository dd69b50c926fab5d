package transcripts

import (
	"time"

	"github.com/kbukum/audiodesk/database"
	"github.com/kbukum/audiodesk/transcription"
)

// Status is the processing state of a transcript document.
type Status string

const (
	StatusQueued     Status = "Queued"
	StatusProcessing Status = "Processing"
	StatusComplete   Status = "Complete"
	StatusFailed     Status = "Failed"
)

// Progress milestones reported to the page.
const (
	progressStarted  = 10
	progressComplete = 100
)

// Document is an uploaded audio file and its transcription state.
type Document struct {
	database.BaseModel
	UserID             string `gorm:"type:text;not null;index:idx_transcript_documents_user"`
	FileName           string `gorm:"type:text;not null"`
	Title              string `gorm:"type:text"`
	BlobPath           string `gorm:"type:text;not null"`
	Size               int64
	Locale             string `gorm:"type:text"`
	Status             Status `gorm:"type:text;not null;default:Queued"`
	PercentageComplete int    `gorm:"not null;default:0"`
	Error              string `gorm:"type:text"`
	NumChunks          int    `gorm:"not null;default:0"`
}

func (Document) TableName() string { return "transcript_documents" }

// Chunk is one time-aligned segment of a finished transcript.
type Chunk struct {
	database.BaseModel
	DocumentID string  `gorm:"type:text;not null;index:idx_transcript_chunks_document"`
	Sequence   int     `gorm:"not null"`
	PageNumber int     `gorm:"not null"`
	Text       string  `gorm:"type:text;not null"`
	Start      float64 `gorm:"column:start_seconds"`
	End        float64 `gorm:"column:end_seconds"`
	Speaker    string  `gorm:"type:text"`
}

func (Chunk) TableName() string { return "transcript_chunks" }

// Models lists the persisted types for auto-migration.
func Models() []interface{} {
	return []interface{}{&Document{}, &Chunk{}}
}

// DocumentView is the API form of a Document.
type DocumentView struct {
	DocumentID         string    `json:"document_id"`
	FileName           string    `json:"file_name"`
	Title              string    `json:"title"`
	Status             Status    `json:"status"`
	PercentageComplete int       `json:"percentage_complete"`
	LastUpdated        time.Time `json:"last_updated"`
	Error              string    `json:"error,omitempty"`
}

// View converts d to its API form.
func (d *Document) View() DocumentView {
	return DocumentView{
		DocumentID:         d.ID,
		FileName:           d.FileName,
		Title:              d.Title,
		Status:             d.Status,
		PercentageComplete: d.PercentageComplete,
		LastUpdated:        d.UpdatedAt,
		Error:              d.Error,
	}
}

// ChunkView is the API form of a Chunk.
type ChunkView struct {
	ChunkSequence int     `json:"chunk_sequence"`
	PageNumber    int     `json:"page_number"`
	Text          string  `json:"text"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Speaker       string  `json:"speaker,omitempty"`
}

// View converts c to its API form.
func (c *Chunk) View() ChunkView {
	return ChunkView{
		ChunkSequence: c.Sequence,
		PageNumber:    c.PageNumber,
		Text:          c.Text,
		Start:         c.Start,
		End:           c.End,
		Speaker:       c.Speaker,
	}
}

// chunksFrom turns a transcription result into numbered chunks. A result
// without segments becomes a single chunk holding the full text.
func chunksFrom(documentID string, resp *transcription.TranscriptionResponse) []Chunk {
	segments := resp.Segments
	if len(segments) == 0 && resp.Text != "" {
		segments = []transcription.Segment{{Start: 0, End: resp.Duration, Text: resp.Text}}
	}
	chunks := make([]Chunk, 0, len(segments))
	for _, seg := range segments {
		n := len(chunks) + 1
		chunks = append(chunks, Chunk{
			DocumentID: documentID,
			Sequence:   n,
			PageNumber: n,
			Text:       seg.Text,
			Start:      seg.Start,
			End:        seg.End,
			Speaker:    seg.Speaker,
		})
	}
	return chunks
}
