package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FieldError names a single offending field and a human-readable reason.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination carries the computed page metadata returned by list endpoints.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination computes the page metadata for a listing of total matching
// rows sliced into pages of the given limit.
func NewPagination(page, limit, total int) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNext:     page*limit < total,
		HasPrev:     page > 1,
	}
}

// Envelope is the uniform response wrapper returned by every endpoint.
// Exactly one of Data/User is set on entity responses; Token accompanies
// authentication responses; Count/Total/Pagination accompany listings.
type Envelope struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message,omitempty"`
	Data       any          `json:"data,omitempty"`
	User       any          `json:"user,omitempty"`
	Token      string       `json:"token,omitempty"`
	Count      *int         `json:"count,omitempty"`
	Total      *int         `json:"total,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	TraceID    string       `json:"trace_id,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and body.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// Respond writes a success envelope with the given status code.
func Respond(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	env.Success = true
	RespondWithJSON(w, r, status, env)
}

// RespondWithList writes a success envelope for one page of items.
func RespondWithList(
	w http.ResponseWriter,
	r *http.Request,
	items any,
	count, total, page, limit int,
) {
	RespondWithJSON(w, r, http.StatusOK, Envelope{
		Success:    true,
		Count:      &count,
		Total:      &total,
		Pagination: NewPagination(page, limit, total),
		Data:       items,
	})
}

// RespondWithError writes a failure envelope with the given status code and
// message. The trace ID from the request context is attached for correlation.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithFieldErrors(w, r, status, message, nil)
}

// RespondWithFieldErrors writes a failure envelope carrying field-level
// validation errors alongside the top-level message.
func RespondWithFieldErrors(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	fieldErrors []FieldError,
) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, Envelope{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
		TraceID: traceID,
	})
}

// RespondWithErrorAndLog writes a failure envelope and logs the detailed
// error. Only the sanitized message reaches the client; the raw error is
// logged with the trace ID for correlation. 5xx responses log at ERROR,
// everything else at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	traceID := GetTraceID(r.Context())

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.LogAttrs(r.Context(), logLevel, "API error response", attrs...)

	RespondWithJSON(w, r, status, Envelope{
		Success: false,
		Message: userMessage,
		TraceID: traceID,
	})
}
