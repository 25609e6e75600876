package store

import "fmt"

// Category classifies a gateway failure for presentation: the UI picks
// tone and recovery hint (re-login, retry, fix input) from the category
// alone.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryForbidden  Category = "forbidden"
	CategoryNotFound   Category = "not_found"
	CategoryServer     Category = "server"
	CategoryNetwork    Category = "network"
)

// APIError is a backend failure with a user-presentable message. The
// message never includes backend internals; Status is the upstream HTTP
// status, or 0 when the request never completed.
type APIError struct {
	Status   int
	Category Category
	Message  string
	cause    error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Op names a gateway operation for message selection.
type Op string

const (
	OpFetch  Op = "fetch"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// opVerb maps operations to the phrasing used in fallback messages.
var opVerb = map[Op]string{
	OpFetch:  "loading transactions",
	OpCreate: "adding transaction",
	OpUpdate: "updating transaction",
	OpDelete: "deleting transaction",
}

// FromStatus maps an upstream HTTP status onto the error taxonomy.
// serverMsg is the backend's own error text; it is only surfaced for
// validation failures, where it names the offending field.
func FromStatus(op Op, status int, serverMsg string) *APIError {
	switch status {
	case 400:
		msg := serverMsg
		if msg == "" {
			msg = "Invalid input. Please check your data."
		}
		return &APIError{Status: status, Category: CategoryValidation, Message: msg}
	case 401:
		return &APIError{Status: status, Category: CategoryAuth, Message: "Session expired. Please log in again."}
	case 403:
		return &APIError{Status: status, Category: CategoryForbidden, Message: "You don't have permission to perform this action."}
	case 404:
		if op == OpDelete {
			return &APIError{Status: status, Category: CategoryNotFound, Message: "Transaction not found. It may have already been deleted."}
		}
		return &APIError{Status: status, Category: CategoryNotFound, Message: "Transaction not found."}
	default:
		if status >= 500 {
			return &APIError{Status: status, Category: CategoryServer, Message: "Server error. Please try again later."}
		}
		msg := serverMsg
		if msg == "" {
			msg = fmt.Sprintf("Error %s. Please try again.", opVerb[op])
		}
		return &APIError{Status: status, Category: CategoryServer, Message: msg}
	}
}

// NetworkError wraps a transport failure (timeout, refused connection)
// that never produced an upstream response.
func NetworkError(op Op, cause error) *APIError {
	return &APIError{
		Category: CategoryNetwork,
		Message:  fmt.Sprintf("Network error while %s. Please check your connection.", opVerb[op]),
		cause:    cause,
	}
}

// ValidationError wraps a client-side rejection; the request never left
// the gateway.
func ValidationError(cause error) *APIError {
	return &APIError{
		Category: CategoryValidation,
		Message:  cause.Error(),
		cause:    cause,
	}
}
