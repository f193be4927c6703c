package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/snowlink/internal/shortener"
)

// toHTTPError maps an error kind onto a status. Caller faults keep their
// message, anything else is reported as an opaque 500.
func toHTTPError(err error) huma.StatusError {
	msg := err.Error()

	var kindErr *shortener.Error
	if errors.As(err, &kindErr) {
		msg = kindErr.Msg
	}

	switch shortener.KindOf(err) {
	case shortener.KindInvalidURL, shortener.KindInvalidSymbol:
		return huma.Error400BadRequest(msg)
	case shortener.KindAliasConflict:
		return huma.Error409Conflict(msg)
	case shortener.KindNotFound:
		return huma.Error404NotFound(msg)
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}
