package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType категория ошибки
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"

	ErrorTypeDownload   ErrorType = "download"
	ErrorTypeFileSystem ErrorType = "filesystem"
	ErrorTypeTelegram   ErrorType = "telegram"

	ErrorTypeBusiness ErrorType = "business"
	ErrorTypeInternal ErrorType = "internal"
)

// DomainError доменная ошибка с типом и кодом
type DomainError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
	UserMsg string         `json:"user_message,omitempty"` // ключ сообщения для пользователя
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is сравнивает по типу и коду, поэтому errors.Is работает с копиями sentinel-ошибок
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

func NewDomainError(errType ErrorType, code, message string) *DomainError {
	return &DomainError{
		Type:    errType,
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
}

func (e *DomainError) clone() *DomainError {
	c := *e
	c.Details = make(map[string]any, len(e.Details))
	for k, v := range e.Details {
		c.Details[k] = v
	}
	return &c
}

// WithDetails возвращает копию ошибки с дополнительными деталями.
// Исходная ошибка не меняется, так что вызывать можно и на sentinel-значениях.
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	c := e.clone()
	for k, v := range details {
		c.Details[k] = v
	}
	return c
}

// WithUserMessage возвращает копию ошибки с ключом пользовательского сообщения
func (e *DomainError) WithUserMessage(msg string) *DomainError {
	c := e.clone()
	c.UserMsg = msg
	return c
}

// WithCause возвращает копию ошибки с причиной
func (e *DomainError) WithCause(err error) *DomainError {
	c := e.clone()
	c.Cause = err
	return c
}

// Ошибки загрузки и доставки

var (
	ErrNoLinkFound = NewDomainError(ErrorTypeValidation, "no_link_found", "no http(s) link in message").
			WithUserMessage("error.link.not_found")
	ErrDownloadFailed = NewDomainError(ErrorTypeDownload, "download_failed", "extraction engine failed").
				WithUserMessage("error.download.failed")
	ErrProducedFileMissing = NewDomainError(ErrorTypeFileSystem, "produced_file_missing", "engine reported success but no file exists").
				WithUserMessage("error.download.file_missing")
	ErrUploadFailed = NewDomainError(ErrorTypeTelegram, "upload_failed", "failed to upload file to telegram").
			WithUserMessage("error.upload.failed")
)

// Служебные ошибки

var (
	ErrConfiguration = NewDomainError(ErrorTypeConfig, "invalid_config", "configuration error")
	ErrInvalidUpdate = NewDomainError(ErrorTypeValidation, "invalid_update", "invalid update")
	ErrRateLimited   = NewDomainError(ErrorTypeBusiness, "rate_limit_exceeded", "rate limit exceeded").
				WithUserMessage("error.general.rate_limit_exceeded")
	ErrInternal = NewDomainError(ErrorTypeInternal, "internal", "internal error").
			WithUserMessage("error.general.internal_error")
)

const reasonKey = "reason"

// NewDownloadFailed создает DownloadFailed с причиной, которую увидит пользователь
func NewDownloadFailed(reason string, cause error) *DomainError {
	return ErrDownloadFailed.WithCause(cause).WithDetails(map[string]any{reasonKey: reason})
}

// DownloadReason извлекает причину из DownloadFailed в цепочке ошибок
func DownloadReason(err error) string {
	var de *DomainError
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if d, ok := e.(*DomainError); ok && d.Is(ErrDownloadFailed) {
			de = d
			break
		}
	}
	if de == nil {
		return ""
	}
	if r, ok := de.Details[reasonKey].(string); ok && r != "" {
		return r
	}
	if de.Cause != nil {
		return de.Cause.Error()
	}
	return de.Message
}

// As обертка над errors.As, чтобы не импортировать оба пакета
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is обертка над errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
