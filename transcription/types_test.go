package transcription

import "testing"

func TestJoinText(t *testing.T) {
	got := JoinText([]Segment{{Text: " Hello "}, {Text: ""}, {Text: "world."}})
	if got != "Hello world." {
		t.Errorf("JoinText = %q", got)
	}
}
