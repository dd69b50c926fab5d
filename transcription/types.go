package transcription

import (
	"io"
	"strings"
)

// TranscriptionRequest holds parameters for a transcription call.
type TranscriptionRequest struct {
	// Audio is read once and not closed by the provider.
	Audio io.Reader `json:"-"`
	// FileName is sent along with the audio so the backend can sniff the format.
	FileName string `json:"file_name"`
	// Locale is the expected spoken locale (e.g. "en-US"); empty lets the
	// backend detect it.
	Locale string `json:"locale,omitempty"`
}

// TranscriptionResponse holds the result of a transcription call.
type TranscriptionResponse struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	Locale   string  `json:"locale,omitempty"`
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start and End are offsets in seconds.
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// JoinText concatenates segment texts with single spaces.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
