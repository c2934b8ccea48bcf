package delivery

import (
	"errors"
	"fmt"
)

// CodeUnknownPlatformError is the sentinel code used when a platform
// error envelope carries no inner error code. Unknown is assumed
// transient, so it stays retryable.
const CodeUnknownPlatformError = "unknown_platform_error"

// CodeAttachmentUploadFailed marks a failed threaded file upload. The
// text content already landed, so the attempt must not be repeated.
const CodeAttachmentUploadFailed = "attachment_upload_failed"

// ErrEmptyChannel is returned for a delivery with no channel identifier.
var ErrEmptyChannel = errors.New("delivery channel is empty")

// PlatformError is a chat-platform failure carrying the unwrapped error
// code extracted from the platform's response envelope.
type PlatformError struct {
	Code string
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// nonRetryableCodes is the fixed set of platform errors that repeating
// the same call cannot fix: channel/workspace configuration problems and
// auth problems.
var nonRetryableCodes = map[string]bool{
	"invalid_channel":           true,
	"channel_not_found":         true,
	"not_in_channel":            true,
	"is_archived":               true,
	"invalid_auth":              true,
	"token_expired":             true,
	"token_revoked":             true,
	"account_inactive":          true,
	"missing_scope":             true,
	CodeAttachmentUploadFailed:  true,
}

// ErrorCode extracts the platform error code from err. Errors that did
// not come through a platform envelope classify as unknown, which keeps
// them retryable.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var perr *PlatformError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return CodeUnknownPlatformError
}

// isNonRetryable reports whether err is in the fixed non-retryable set.
// Anything else, including rate limits and unknown platform errors, is
// retryable.
func isNonRetryable(err error) bool {
	return nonRetryableCodes[ErrorCode(err)]
}
