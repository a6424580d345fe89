package handler

import (
	"errors"
	"net/http"

	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/response"
)

// writeError maps business error codes onto HTTP statuses. Anything
// unrecognized is a 500 so infrastructure failures never masquerade as
// client mistakes.
func writeError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		response.InternalServerError(w, "internal error", err)
		return
	}

	switch bizErr.Code {
	case customError.ErrCodeLeaseNotFound, customError.ErrCodeEntryNotFound:
		response.NotFound(w, bizErr.Message)
	case customError.ErrCodeEntryAlreadyPaid,
		customError.ErrCodeInvalidAmount,
		customError.ErrCodeInvalidLeaseTerms,
		customError.ErrCodeLeaseNotActive,
		customError.ErrCodeNotOnboarded,
		customError.ErrCodeSignatureInvalid:
		response.BadRequest(w, bizErr.Message, bizErr.Err)
	default:
		response.InternalServerError(w, bizErr.Message, bizErr.Err)
	}
}
