// Package transcription defines the speech-to-text provider interface and
// the request and response types shared by its backends.
package transcription

import "context"

// Provider is the interface that transcription backends implement.
type Provider interface {
	Name() string

	// IsAvailable reports whether the backend is configured and reachable.
	IsAvailable(ctx context.Context) bool

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
}
