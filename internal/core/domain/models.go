package domain

import (
	"path/filepath"
	"strings"
)

// Request is one inbound chat message that may carry a link.
type Request struct {
	ID        string
	ChatID    int64
	MessageID int
	UserID    int64
	Username  string
	Text      string
	Caption   string
}

// DownloadResult describes the file the extraction engine produced for a request.
// Size is only meaningful when SizeKnown is set.
type DownloadResult struct {
	Path      string
	Size      int64
	SizeKnown bool
	Title     string
	Uploader  string
	URL       string
}

// DisplayTitle returns the reported title, or the file's base name when there is none.
func (r *DownloadResult) DisplayTitle() string {
	if r == nil {
		return ""
	}
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	if r.Path != "" {
		return filepath.Base(r.Path)
	}
	return ""
}

// FileName is the name the file is delivered under.
func (r *DownloadResult) FileName() string {
	if r == nil || r.Path == "" {
		return ""
	}
	return filepath.Base(r.Path)
}

// StatusMessage identifies the single progress message of a request.
type StatusMessage struct {
	ChatID    int64
	MessageID int
}

// DeliveryMode is how a produced file reaches the chat.
type DeliveryMode string

const (
	DeliveryVideo    DeliveryMode = "video"
	DeliveryDocument DeliveryMode = "document"
	DeliveryText     DeliveryMode = "text"
)

func (m DeliveryMode) String() string {
	return string(m)
}

// Request outcomes, used as metric labels.
const (
	OutcomeDelivered      = "delivered"
	OutcomeNoLink         = "no_link"
	OutcomeDownloadFailed = "download_failed"
	OutcomeFileMissing    = "file_missing"
	OutcomeUploadFailed   = "upload_failed"
	OutcomeAborted        = "aborted"
)

// Route is the handler an update is dispatched to.
type Route string

const (
	RouteStart   Route = "start"
	RouteHelp    Route = "help"
	RouteLink    Route = "link"
	RouteUnknown Route = "unknown"
)
