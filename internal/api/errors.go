package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// TaskError represents a structured error response with context.
type TaskError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface.
func (e TaskError) Error() string {
	return e.Message
}

// Error types. The trial's failure surface is small: an action attempted
// in a state that forbids it, or a structurally invalid config at reset.
const (
	ErrTypeInvalidTransition = "invalid_transition"
	ErrTypeInvalidConfig     = "invalid_config"
	ErrTypeInvalidRequest    = "invalid_request"
	ErrTypeNotFound          = "not_found"
	ErrTypeInternal          = "internal_error"
)

// ErrorBuilder helps construct structured errors with context.
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

// NewError creates a new error builder.
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error.
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// Build creates the final TaskError.
func (eb *ErrorBuilder) Build() TaskError {
	return TaskError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   eb.context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// statusForType maps an error type onto its HTTP status. Rejected
// transitions are conflicts with current trial state, not bad requests.
func statusForType(errType string) int {
	switch errType {
	case ErrTypeInvalidTransition:
		return http.StatusConflict
	case ErrTypeInvalidConfig, ErrTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RecoveryHandler provides panic recovery with structured error logging.
func (s *Server) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				requestID := middleware.GetReqID(r.Context())
				s.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)
				taskErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("panic", fmt.Sprintf("%v", rvr)).
					WithContext("path", r.URL.Path).
					Build()
				s.writeTaskError(w, taskErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// logError logs a handled error with its request context.
func logError(logger *log.Logger, r *http.Request, taskErr TaskError, status int) {
	logger.Printf(
		"error_occurred type=%s status=%d request_id=%s method=%s path=%s message=%q",
		taskErr.Type, status, taskErr.RequestID, r.Method, r.URL.Path, taskErr.Message,
	)
}
