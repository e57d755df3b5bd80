package handspring

import (
	"github.com/toyz/handspring/internal/errors"
)

// Error kinds callers match with errors.Is
var (
	ErrConfigLoad             = errors.ErrConfigLoad
	ErrScanPath               = errors.ErrScanPath
	ErrScanEntry              = errors.ErrScanEntry
	ErrAnnotationSyntax       = errors.ErrAnnotationSyntax
	ErrBeanConstruction       = errors.ErrBeanConstruction
	ErrInjectionTargetMissing = errors.ErrInjectionTargetMissing
	ErrInjectionTypeMismatch  = errors.ErrInjectionTypeMismatch
	ErrRouteBinding           = errors.ErrRouteBinding
	ErrRouteNotFound          = errors.ErrRouteNotFound
	ErrHandlerInvocation      = errors.ErrHandlerInvocation
)

// RouteNotFoundError is returned by Dispatch for a path with no route
type RouteNotFoundError = errors.RouteNotFoundError

// HandlerInvocationError is returned by Dispatch when a handler fails or panics
type HandlerInvocationError = errors.HandlerInvocationError

// ErrorCode classifies every error the runtime reports
type ErrorCode = errors.ErrorCode

// CodeOf returns the code of the first runtime error in err's chain
func CodeOf(err error) ErrorCode {
	return errors.CodeOf(err)
}
