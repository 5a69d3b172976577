// Package errors provides unified error handling for the capture pipeline,
// the UI boundary and the local control service.
package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code classifies an AppError.
type Code int

const (
	Unknown Code = iota
	Internal
	InvalidArgument
	NotFound
	Unavailable
	Timeout
	Cancelled
	Busy
	CaptureFailed
	ImageInvalid
	ImageWriteFailed
	OCRFailed
	ClipboardFailed
	TranslationUnavailable
	ConfigInvalid
)

var codeNames = map[Code]string{
	Unknown:                "UNKNOWN",
	Internal:               "INTERNAL",
	InvalidArgument:        "INVALID_ARGUMENT",
	NotFound:               "NOT_FOUND",
	Unavailable:            "UNAVAILABLE",
	Timeout:                "TIMEOUT",
	Cancelled:              "CANCELLED",
	Busy:                   "BUSY",
	CaptureFailed:          "CAPTURE_FAILED",
	ImageInvalid:           "IMAGE_INVALID",
	ImageWriteFailed:       "IMAGE_WRITE_FAILED",
	OCRFailed:              "OCR_FAILED",
	ClipboardFailed:        "CLIPBOARD_FAILED",
	TranslationUnavailable: "TRANSLATION_UNAVAILABLE",
	ConfigInvalid:          "CONFIG_INVALID",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CODE(%d)", int(c))
}

// grpcCodeMap maps error codes to gRPC status codes.
var grpcCodeMap = map[Code]codes.Code{
	Unknown:                codes.Unknown,
	Internal:               codes.Internal,
	InvalidArgument:        codes.InvalidArgument,
	NotFound:               codes.NotFound,
	Unavailable:            codes.Unavailable,
	Timeout:                codes.DeadlineExceeded,
	Cancelled:              codes.Canceled,
	Busy:                   codes.ResourceExhausted,
	CaptureFailed:          codes.Unavailable,
	ImageInvalid:           codes.InvalidArgument,
	ImageWriteFailed:       codes.Internal,
	OCRFailed:              codes.Internal,
	ClipboardFailed:        codes.Unavailable,
	TranslationUnavailable: codes.Unavailable,
	ConfigInvalid:          codes.InvalidArgument,
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// GRPCCode returns the corresponding gRPC status code.
func (e *AppError) GRPCCode() codes.Code {
	if c, ok := grpcCodeMap[e.Code]; ok {
		return c
	}
	return codes.Unknown
}

// GRPCStatus lets status.FromError recover the gRPC code from an AppError.
// The message carries only e.Message so the client side can rebuild it.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(e.GRPCCode(), e.Code.String()+": "+e.Message)
}

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// FromGRPCError converts an error returned by a control client call.
func FromGRPCError(err error) *AppError {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &AppError{Code: Unknown, Message: err.Error(), Cause: err}
	}
	msg := st.Message()
	for c, name := range codeNames {
		prefix := name + ": "
		if len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
			return &AppError{Code: c, Message: msg[len(prefix):]}
		}
	}
	return &AppError{Code: grpcToCode(st.Code()), Message: msg}
}

// grpcToCode maps gRPC codes back to our error codes (best effort).
func grpcToCode(c codes.Code) Code {
	switch c {
	case codes.InvalidArgument:
		return InvalidArgument
	case codes.NotFound:
		return NotFound
	case codes.Unavailable:
		return Unavailable
	case codes.DeadlineExceeded:
		return Timeout
	case codes.Canceled:
		return Cancelled
	case codes.Internal:
		return Internal
	case codes.ResourceExhausted:
		return Busy
	default:
		return Unknown
	}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return Unknown
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsFatal reports whether err aborts a pipeline run. Clipboard and
// translation failures are soft.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case CaptureFailed, ImageInvalid, ImageWriteFailed, OCRFailed, Internal:
		return true
	default:
		return false
	}
}

// IsRetryable returns true if the error is potentially retryable.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case Unavailable, Timeout, Busy:
		return true
	default:
		return false
	}
}
