package initdata

import (
	"errors"

	apperrors "miniapp-auth/internal/common/errors"
)

// ErrorKind classifies why a launch payload was rejected
type ErrorKind string

const (
	// MissingSignature means the hash field is absent or empty
	MissingSignature ErrorKind = "missing_signature"
	// MalformedData means the payload or a required field could not be decoded
	MalformedData ErrorKind = "malformed_data"
	// SignatureMismatch means the recomputed signature differs from the supplied one
	SignatureMismatch ErrorKind = "signature_mismatch"
	// MissingTimestamp means the auth_date field is absent
	MissingTimestamp ErrorKind = "missing_timestamp"
	// Expired means the payload is older than the freshness window
	Expired ErrorKind = "expired"
	// PayloadParseError means the user field is missing, undecodable or has no id
	PayloadParseError ErrorKind = "payload_parse_error"
	// ConfigurationError means the verifier was built without a usable secret
	ConfigurationError ErrorKind = "configuration_error"
)

// String returns the kind identifier
func (k ErrorKind) String() string {
	return string(k)
}

// Message returns a client-safe description of the kind
func (k ErrorKind) Message() string {
	switch k {
	case MissingSignature:
		return "init data is not signed"
	case MalformedData:
		return "init data is malformed"
	case SignatureMismatch:
		return "invalid init data signature"
	case MissingTimestamp:
		return "init data has no auth date"
	case Expired:
		return "init data has expired"
	case PayloadParseError:
		return "failed to parse user data"
	case ConfigurationError:
		return "server configuration error"
	default:
		return "init data rejected"
	}
}

// RejectionError carries only the kind of a rejection. It never holds payload
// values, the computed signature or the derived key.
type RejectionError struct {
	Kind ErrorKind
}

func (e *RejectionError) Error() string {
	return "init data rejected: " + string(e.Kind)
}

// Is makes errors.Is match on kind
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Kind == e.Kind
}

func reject(kind ErrorKind) *RejectionError {
	return &RejectionError{Kind: kind}
}

// KindOf extracts the rejection kind from err, or "" when err is not a rejection
func KindOf(err error) ErrorKind {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Kind
	}
	return ""
}

// AsAppError converts a rejection into the application error taxonomy so the
// HTTP layer can map it to a status code.
func AsAppError(err error) *apperrors.AppError {
	kind := KindOf(err)
	var appErr *apperrors.AppError

	switch kind {
	case MissingSignature, MalformedData, MissingTimestamp, PayloadParseError:
		appErr = apperrors.ValidationError(kind.Message())
	case SignatureMismatch, Expired:
		appErr = apperrors.AuthError(kind.Message())
	case ConfigurationError:
		appErr = apperrors.ConfigError(kind.Message())
	default:
		return apperrors.InternalError("unexpected verification failure", err)
	}

	return appErr.WithCode(string(kind))
}
