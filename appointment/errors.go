package appointment

import "errors"

// Kind classifies store failures so the transport layer can map them to
// user facing responses.
type Kind int

const (
	KindAuthorization Kind = iota + 1
	KindValidation
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is returned by every Store operation that fails.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, appointment.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrAuthorization = &Error{Kind: KindAuthorization, Msg: "not authorized"}
	ErrValidation    = &Error{Kind: KindValidation, Msg: "invalid input"}
	ErrNotFound      = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrStorage       = &Error{Kind: KindStorage, Msg: "storage failure"}
)

// ErrRecordNotFound is returned by repositories when no row matches an id.
var ErrRecordNotFound = errors.New("appointment record not found")

// KindOf returns the kind carried by err, or 0 when err is not a store error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func authorizationError(msg string) error {
	return &Error{Kind: KindAuthorization, Msg: msg}
}

func validationError(msg string, err error) error {
	return &Error{Kind: KindValidation, Msg: msg, Err: err}
}

func notFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func storageError(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}
