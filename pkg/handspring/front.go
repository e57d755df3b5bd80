package handspring

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/toyz/handspring/internal/utils"
)

const (
	// HeaderRequestID carries the id assigned to each dispatched request
	HeaderRequestID = "X-Request-Id"
	// ContentTypeHTML is the content type of every response
	ContentTypeHTML = "text/html; charset=UTF-8"
)

// Response is the outcome of one dispatched request
type Response struct {
	Status      int
	ContentType string
	Body        string
	RequestID   string
}

// FrontController maps HTTP requests onto the dispatcher. Every method is
// handled the same way.
type FrontController struct {
	dispatcher *Dispatcher
	debug      bool
	diag       *utils.DiagnosticSystem
}

// FrontOption configures a FrontController
type FrontOption func(*FrontController)

// WithDebug appends the handler stack to 500 bodies
func WithDebug(debug bool) FrontOption {
	return func(f *FrontController) {
		f.debug = debug
	}
}

// WithFrontDiagnostics logs failed requests through d
func WithFrontDiagnostics(d *Diagnostics) FrontOption {
	return func(f *FrontController) {
		if d != nil {
			f.diag = d
		}
	}
}

// NewFrontController wraps d
func NewFrontController(d *Dispatcher, opts ...FrontOption) *FrontController {
	f := &FrontController{
		dispatcher: d,
		diag:       utils.NewSilentDiagnostics(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dispatcher returns the wrapped dispatcher
func (f *FrontController) Dispatcher() *Dispatcher {
	return f.dispatcher
}

// Handle dispatches path and renders the outcome
func (f *FrontController) Handle(method, path string) Response {
	return f.HandleWithID(method, path, "")
}

// HandleWithID is Handle with a caller supplied request id. An empty id is
// replaced by a fresh one.
func (f *FrontController) HandleWithID(method, path, requestID string) Response {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	resp := Response{
		Status:      http.StatusOK,
		ContentType: ContentTypeHTML,
		RequestID:   requestID,
	}

	result, err := f.dispatcher.Dispatch(path)
	if err == nil {
		if result != nil {
			resp.Body = fmt.Sprint(result)
		}
		f.diag.Debug("%s %s -> 200 [%s]", method, path, requestID)
		return resp
	}

	var notFound *RouteNotFoundError
	var failed *HandlerInvocationError
	switch {
	case stderrors.As(err, &notFound):
		resp.Status = http.StatusNotFound
		resp.Body = fmt.Sprintf("404: %s not found", displayPath(path))
		f.diag.Verbose("%s %s -> 404 [%s]", method, path, requestID)
	case stderrors.As(err, &failed):
		resp.Status = http.StatusInternalServerError
		cause := failed.Unwrap()
		if cause == nil {
			cause = failed
		}
		resp.Body = fmt.Sprintf("500: %v", cause)
		if f.debug && failed.Panicked() {
			resp.Body += "\n\n" + string(failed.Stack)
		}
		f.diag.Error("%s %s -> 500 [%s]: %v", method, path, requestID, err)
	default:
		resp.Status = http.StatusInternalServerError
		resp.Body = fmt.Sprintf("500: %v", err)
		f.diag.Error("%s %s -> 500 [%s]: %v", method, path, requestID, err)
	}
	return resp
}

// ServeHTTP serves any request. An incoming X-Request-Id is kept. The path
// is dispatched in its escaped form, so %3F and %23 never end it early.
func (f *FrontController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := f.HandleWithID(r.Method, r.URL.EscapedPath(), r.Header.Get(HeaderRequestID))
	resp.Write(w)
}

// Write copies the response onto w
func (r Response) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", r.ContentType)
	w.Header().Set(HeaderRequestID, r.RequestID)
	w.WriteHeader(r.Status)
	_, _ = w.Write([]byte(r.Body))
}

func displayPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	return p
}
