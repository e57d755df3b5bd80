package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinels matched by errors.Is for every error carrying the code.
var (
	ErrConfigLoad             = stderrors.New("config load failed")
	ErrScanPath               = stderrors.New("scan path unresolvable")
	ErrScanEntry              = stderrors.New("scan entry skipped")
	ErrAnnotationSyntax       = stderrors.New("malformed annotation")
	ErrBeanConstruction       = stderrors.New("bean construction failed")
	ErrInjectionTargetMissing = stderrors.New("injection target missing")
	ErrInjectionTypeMismatch  = stderrors.New("injection type mismatch")
	ErrRouteBinding           = stderrors.New("route binding failed")
	ErrRouteNotFound          = stderrors.New("route not found")
	ErrHandlerInvocation      = stderrors.New("handler invocation failed")
	ErrGeneration             = stderrors.New("generation failed")
)

var sentinels = map[ErrorCode]error{
	ConfigLoadErrorCode:        ErrConfigLoad,
	ScanPathErrorCode:          ErrScanPath,
	ScanEntryErrorCode:         ErrScanEntry,
	AnnotationSyntaxErrorCode:  ErrAnnotationSyntax,
	BeanConstructionErrorCode:  ErrBeanConstruction,
	InjectionTargetMissingCode: ErrInjectionTargetMissing,
	InjectionTypeMismatchCode:  ErrInjectionTypeMismatch,
	RouteBindingErrorCode:      ErrRouteBinding,
	RouteNotFoundCode:          ErrRouteNotFound,
	HandlerInvocationErrorCode: ErrHandlerInvocation,
	GenerationErrorCode:        ErrGeneration,
}

// ConfigLoad wraps a failure to load or read the configuration source
func ConfigLoad(path string, cause error) *BaseError {
	return Wrap(ConfigLoadErrorCode, fmt.Sprintf("failed to load configuration '%s'", path), cause).
		WithContext("path", path)
}

// MissingConfigKey reports a required key absent from the configuration source
func MissingConfigKey(path, key string) *BaseError {
	return Newf(ConfigLoadErrorCode, "configuration '%s' has no value for required key '%s'", path, key).
		WithContext("path", path).
		WithContext("key", key).
		WithSuggestion(fmt.Sprintf("add '%s' to the configuration file", key))
}

// ScanPath reports a namespace that does not resolve to a directory
func ScanPath(namespace, dir string, cause error) *BaseError {
	return Wrap(ScanPathErrorCode, fmt.Sprintf("namespace '%s' does not resolve to a directory '%s'", namespace, dir), cause).
		WithContext("namespace", namespace).
		WithContext("dir", dir)
}

// ScanEntry reports a directory entry that could not be read or parsed
func ScanEntry(path string, cause error) *BaseError {
	return Wrap(ScanEntryErrorCode, fmt.Sprintf("skipped '%s'", path), cause).
		WithLocation(SourceLocation{File: path})
}

// AnnotationSyntax reports a malformed marker comment
func AnnotationSyntax(loc SourceLocation, raw string, cause error) *BaseError {
	return Wrap(AnnotationSyntaxErrorCode, fmt.Sprintf("invalid annotation %q", raw), cause).
		WithLocation(loc)
}

// BeanConstruction reports a bean that could not be instantiated
func BeanConstruction(typeName string, cause error) *BaseError {
	return Wrap(BeanConstructionErrorCode, fmt.Sprintf("failed to construct '%s'", typeName), cause).
		WithContext("type", typeName)
}

// InjectionTargetMissing reports an injection point whose bean is not registered
func InjectionTargetMissing(owner, field, name string) *BaseError {
	return Newf(InjectionTargetMissingCode, "bean not found: %s", name).
		WithContext("owner", owner).
		WithContext("field", field).
		WithSuggestion(fmt.Sprintf("annotate a type so it registers as '%s', or name the bean explicitly", name))
}

// InjectionTypeMismatch reports a bean that cannot be assigned to the injected field
func InjectionTypeMismatch(owner, field, name, want, got string) *BaseError {
	return Newf(InjectionTypeMismatchCode, "bean '%s' of type %s is not assignable to %s.%s (%s)", name, got, owner, field, want).
		WithContext("owner", owner).
		WithContext("field", field)
}

// InjectionField reports an injection point that does not exist on the live instance
func InjectionField(owner, field, reason string) *BaseError {
	return Newf(InjectionTypeMismatchCode, "cannot inject %s.%s: %s", owner, field, reason).
		WithContext("owner", owner).
		WithContext("field", field)
}

// RouteBinding reports a route-marked method that cannot be bound
func RouteBinding(bean, method, pattern, reason string) *BaseError {
	return Newf(RouteBindingErrorCode, "cannot bind %s.%s to '%s': %s", bean, method, pattern, reason).
		WithContext("bean", bean).
		WithContext("method", method).
		WithContext("pattern", pattern)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", item), cause)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// RouteNotFoundError is the dispatch outcome for a path with no route
type RouteNotFoundError struct {
	*BaseError
	Path string
}

// NewRouteNotFound creates a RouteNotFoundError for the lookup key
func NewRouteNotFound(path string) *RouteNotFoundError {
	return &RouteNotFoundError{
		BaseError: Newf(RouteNotFoundCode, "no route for '%s'", path),
		Path:      path,
	}
}

// HandlerInvocationError wraps a failure raised by a route handler
type HandlerInvocationError struct {
	*BaseError
	Pattern string
	Bean    string
	Method  string
	// Stack is set when the handler panicked
	Stack []byte
}

// NewHandlerInvocation creates a HandlerInvocationError for the failed route
func NewHandlerInvocation(pattern, bean, method string, cause error, stack []byte) *HandlerInvocationError {
	return &HandlerInvocationError{
		BaseError: Wrap(HandlerInvocationErrorCode, fmt.Sprintf("%s.%s failed", bean, method), cause).
			WithContext("pattern", pattern),
		Pattern: pattern,
		Bean:    bean,
		Method:  method,
		Stack:   stack,
	}
}

// Panicked reports whether the handler panicked rather than returning an error
func (e *HandlerInvocationError) Panicked() bool {
	return len(e.Stack) > 0
}
