package validation

import (
	"testing"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
)

func TestFirstLink(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		noLink   bool
	}{
		{
			name:     "Link in the middle of a sentence",
			input:    "check this out https://example.com/watch?v=abc123 thanks",
			expected: "https://example.com/watch?v=abc123",
		},
		{
			name:     "Plain http",
			input:    "http://example.com",
			expected: "http://example.com",
		},
		{
			name:     "First of several links",
			input:    "https://a.test/1 and https://b.test/2",
			expected: "https://a.test/1",
		},
		{
			name:     "Link across lines",
			input:    "look\nhttps://youtu.be/dQw4w9WgXcQ\nnice",
			expected: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:   "Bare domain",
			input:  "example.com/video",
			noLink: true,
		},
		{
			name:   "FTP link",
			input:  "ftp://example.com/file",
			noLink: true,
		},
		{
			name:   "Empty string",
			input:  "",
			noLink: true,
		},
		{
			name:   "Scheme only",
			input:  "https://",
			noLink: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstLink(tt.input)
			if tt.noLink {
				if !errors.Is(err, errors.ErrNoLinkFound) {
					t.Errorf("FirstLink(%q) error = %v, want ErrNoLinkFound", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FirstLink(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("FirstLink(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		name     string
		req      domain.Request
		expected string
	}{
		{"text wins", domain.Request{Text: "body", Caption: "caption"}, "body"},
		{"caption when text empty", domain.Request{Caption: "caption https://x.test"}, "caption https://x.test"},
		{"neither", domain.Request{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageText(tt.req); got != tt.expected {
				t.Errorf("MessageText() = %q, want %q", got, tt.expected)
			}
		})
	}
}
