package errors

const (
	HttpInternalError             = "internal_error"
	HttpInvalidJsonError          = "invalid_json"
	HttpNoDataError               = "no_data"
	HttpUninitializedHistoryError = "uninitialized_history"
	HttpSnapshotConflictError     = "snapshot_conflict"
	HttpProviderError             = "provider_unavailable"
)

// ErrorResponse is the error response body for all API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
