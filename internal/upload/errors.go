package upload

import "net/http"

// Kind classifies why an upload failed.
type Kind int

const (
	// KindClientInput means the request carried no file.
	KindClientInput Kind = iota + 1
	// KindConfiguration means the store is missing credentials.
	KindConfiguration
	// KindUpstream means the store rejected the write or answered unexpectedly.
	KindUpstream
	// KindUnexpected covers parsing, reading and transport failures.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Status is the HTTP status reported to the caller for k.
func (k Kind) Status() int {
	if k == KindClientInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error is the failure result of an upload step.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
