package errors

import (
	"fmt"
)

// HandError is implemented by every error the framework produces
type HandError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode classifies a HandError
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// boot; ConfigLoad and ScanPath abort it
	ConfigLoadErrorCode
	ScanPathErrorCode
	ScanEntryErrorCode
	AnnotationSyntaxErrorCode

	// container
	BeanConstructionErrorCode
	InjectionTargetMissingCode
	InjectionTypeMismatchCode
	RouteBindingErrorCode

	// dispatch
	RouteNotFoundCode
	HandlerInvocationErrorCode

	// tooling
	GenerationErrorCode
	FileSystemErrorCode
)

var codeNames = map[ErrorCode]string{
	ConfigLoadErrorCode:        "ConfigLoadError",
	ScanPathErrorCode:          "ScanPathError",
	ScanEntryErrorCode:         "ScanEntryError",
	AnnotationSyntaxErrorCode:  "AnnotationSyntaxError",
	BeanConstructionErrorCode:  "BeanConstructionError",
	InjectionTargetMissingCode: "InjectionTargetMissing",
	InjectionTypeMismatchCode:  "InjectionTypeMismatch",
	RouteBindingErrorCode:      "RouteBindingError",
	RouteNotFoundCode:          "RouteNotFound",
	HandlerInvocationErrorCode: "HandlerInvocationError",
	GenerationErrorCode:        "GenerationError",
	FileSystemErrorCode:        "FileSystemError",
}

func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UnknownError"
}

// IsFatal reports whether the code aborts boot
func (e ErrorCode) IsFatal() bool {
	return e == ConfigLoadErrorCode || e == ScanPathErrorCode
}

// SourceLocation is a file position, 1-based. Zero fields are omitted when printed.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty reports whether no file is known
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError is the single concrete HandError. The typed wrappers in
// wrappers.go embed it.
type BaseError struct {
	Code        ErrorCode
	Message     string
	Loc         SourceLocation
	Cause       error
	ContextData map[string]interface{}
	Hints       []string
}

// Error renders "loc: message: cause", dropping empty parts
func (e *BaseError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return e.Loc.String() + ": " + msg
}

func (e *BaseError) ErrorCode() ErrorCode     { return e.Code }
func (e *BaseError) Location() SourceLocation { return e.Loc }
func (e *BaseError) Suggestions() []string    { return e.Hints }
func (e *BaseError) Unwrap() error            { return e.Cause }

// Context never returns nil
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return map[string]interface{}{}
	}
	return e.ContextData
}

// Is matches the sentinel registered for the error code, so that
// errors.Is(err, ErrBeanConstruction) works for every wrapper type.
func (e *BaseError) Is(target error) bool {
	sentinel, ok := sentinels[e.Code]
	return ok && target == sentinel
}

func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// New creates a BaseError without a cause
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a BaseError around cause
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first HandError in err's chain
func CodeOf(err error) ErrorCode {
	for err != nil {
		if he, ok := err.(HandError); ok {
			return he.ErrorCode()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return UnknownErrorCode
}
