package interfaces

import (
	"errors"
	"fmt"
)

// FailureKind is the gateway-level classification of a failed delivery.
type FailureKind int

const (
	// FailureBackendError is any backend failure other than a missing object.
	FailureBackendError FailureKind = iota
	// FailureTenantUnknown means the tenant name has no registry entry.
	FailureTenantUnknown
	// FailureObjectNotFound means the backend reported the key does not exist.
	FailureObjectNotFound
)

// String returns kind name.
func (k FailureKind) String() string {
	switch k {
	case FailureTenantUnknown:
		return "tenant_unknown"
	case FailureObjectNotFound:
		return "object_not_found"
	case FailureBackendError:
		return "backend_error"
	default:
		return "unknown"
	}
}

// Backend operations a DeliveryError can originate from.
const (
	OpLookup  = "lookup"
	OpHead    = "head"
	OpPresign = "presign"
	OpGet     = "get"
)

var (
	// ErrTenantUnknown matches DeliveryErrors of kind FailureTenantUnknown.
	ErrTenantUnknown = errors.New("tenant not found")

	// ErrBackend matches DeliveryErrors of kind FailureBackendError.
	ErrBackend = errors.New("storage backend error")
)

// DeliveryError is the only error type returned by the dispatcher.
// Err holds the backend-supplied cause, if any.
type DeliveryError struct {
	Kind   FailureKind
	Tenant string
	Key    string
	Op     string
	Err    error
}

// NewDeliveryError creates a DeliveryError.
func NewDeliveryError(kind FailureKind, tenant, key, op string, err error) *DeliveryError {
	return &DeliveryError{Kind: kind, Tenant: tenant, Key: key, Op: op, Err: err}
}

// Error returns a human-readable message suitable for plain-text responses.
func (e *DeliveryError) Error() string {
	switch e.Kind {
	case FailureTenantUnknown:
		return fmt.Sprintf("config not found: %s", e.Tenant)
	case FailureObjectNotFound:
		return fmt.Sprintf("object not found: %s", e.Key)
	default:
		if e.Err == nil {
			return "S3 error: unknown"
		}
		return fmt.Sprintf("S3 error: %v", e.Err)
	}
}

// Unwrap returns the backend cause.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *DeliveryError) Is(target error) bool {
	switch target {
	case ErrTenantUnknown:
		return e.Kind == FailureTenantUnknown
	case ErrObjectNotFound:
		return e.Kind == FailureObjectNotFound
	case ErrBackend:
		return e.Kind == FailureBackendError
	}
	return false
}

// FailureKindOf classifies err. Errors that are not DeliveryErrors are
// backend errors.
func FailureKindOf(err error) FailureKind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return FailureBackendError
}
