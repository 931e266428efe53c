package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NewDownloadFailed("Private video", stderrors.New("exit status 1")))

	if !Is(wrapped, ErrDownloadFailed) {
		t.Error("expected wrapped DownloadFailed to match sentinel")
	}
	if Is(wrapped, ErrUploadFailed) {
		t.Error("DownloadFailed must not match UploadFailed")
	}
	if Is(ErrNoLinkFound, ErrProducedFileMissing) {
		t.Error("distinct codes must not match")
	}
}

func TestDomainError_WithDetailsDoesNotMutateSentinel(t *testing.T) {
	_ = ErrUploadFailed.WithDetails(map[string]any{"chat_id": 1})
	if len(ErrUploadFailed.Details) != 0 {
		t.Errorf("sentinel details mutated: %v", ErrUploadFailed.Details)
	}

	e := ErrRateLimited.WithUserMessage("custom")
	if ErrRateLimited.UserMsg == "custom" {
		t.Error("sentinel user message mutated")
	}
	if e.UserMsg != "custom" {
		t.Errorf("UserMsg = %q, want custom", e.UserMsg)
	}
}

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrorTypeInternal, "x", "failed").WithCause(stderrors.New("boom"))
	if got, want := err.Error(), "[internal:x] failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, err.Cause) {
		t.Error("Unwrap should expose cause")
	}
}

func TestDownloadReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"explicit reason", NewDownloadFailed("ERROR: Private video", stderrors.New("exit status 1")), "ERROR: Private video"},
		{"empty reason uses cause", NewDownloadFailed("", stderrors.New("exit status 2")), "exit status 2"},
		{"wrapped", fmt.Errorf("ctx: %w", NewDownloadFailed("geo blocked", nil)), "geo blocked"},
		{"other error", ErrUploadFailed, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DownloadReason(tt.err); got != tt.want {
				t.Errorf("DownloadReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
