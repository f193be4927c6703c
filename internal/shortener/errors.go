package shortener

import (
	"errors"

	"github.com/serroba/snowlink/internal/base62"
	"github.com/serroba/snowlink/internal/snowflake"
)

// Kind classifies every failure the shortener can report. Callers switch on
// the kind rather than on concrete error values.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindAliasConflict
	KindExhaustedRetries
	KindNotFound
	KindClockRegression
	KindConfiguration
	KindInvalidSymbol
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindAliasConflict:
		return "alias_conflict"
	case KindExhaustedRetries:
		return "exhausted_retries"
	case KindNotFound:
		return "not_found"
	case KindClockRegression:
		return "clock_regression"
	case KindConfiguration:
		return "configuration"
	case KindInvalidSymbol:
		return "invalid_symbol"
	default:
		return "unknown"
	}
}

// Error is a kind tagged error with a human readable message.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidURL       = &Error{Kind: KindInvalidURL, Msg: "invalid url"}
	ErrAliasConflict    = &Error{Kind: KindAliasConflict, Msg: "alias already in use"}
	ErrExhaustedRetries = &Error{Kind: KindExhaustedRetries, Msg: "failed to generate unique short code"}
	ErrNotFound         = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrClockRegression  = &Error{Kind: KindClockRegression, Msg: "clock moved backwards"}
	ErrConfiguration    = &Error{Kind: KindConfiguration, Msg: "invalid configuration"}
	ErrInvalidSymbol    = &Error{Kind: KindInvalidSymbol, Msg: "invalid short code symbol"}
)

// ErrCodeTaken is returned by Repository.Save when the short code already
// exists. It is a storage signal, consumed by the Allocator.
var ErrCodeTaken = errors.New("short code already taken")

// KindOf classifies err, looking through wrapping. Generator and codec errors
// are mapped to their kinds even when they never passed through an *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, snowflake.ErrClockRegression):
		return KindClockRegression
	case errors.Is(err, snowflake.ErrInvalidConfig):
		return KindConfiguration
	case errors.Is(err, base62.ErrInvalidSymbol), errors.Is(err, base62.ErrOverflow):
		return KindInvalidSymbol
	}

	return KindUnknown
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
