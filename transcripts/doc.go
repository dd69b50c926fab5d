// Package transcripts implements the audio transcription workspace: the
// settings-gated /transcripts page, the JSON API the page script talks to,
// the document and chunk persistence, the job queue and the worker that
// sends uploaded audio to the speech service.
package transcripts
