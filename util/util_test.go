package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 7},
		{"1024", 1024},
		{"512KB", 512 * 1024},
		{"25MB", 25 * 1024 * 1024},
		{"25mb", 25 * 1024 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"100B", 100},
		{"lots", 7},
		{"-5MB", 7},
	}
	for _, tc := range tests {
		if got := ParseSize(tc.in, 7); got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"meeting.mp3", "meeting.mp3"},
		{"  meeting.mp3 \n", "meeting.mp3"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\call.wav`, "call.wav"},
		{"..", ""},
		{"", ""},
		{".hidden.ogg", "hidden.ogg"},
	}
	for _, tc := range tests {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
