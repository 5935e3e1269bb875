// Package apierror defines the error envelopes every HTTP response uses.
// Routing all client-facing errors through here keeps the surface uniform
// and prevents leaking internals (stack traces, SQL errors, pool state).
package apierror

// APIError is the canonical envelope for 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field failures from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
