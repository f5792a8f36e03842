package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/bizdeskhq/bizdesk/internal/domain/auth"
	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
	"github.com/bizdeskhq/bizdesk/internal/domain/order"
	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/report"
)

// maxBodyBytes caps request bodies; the forms behind this API are tiny.
const maxBodyBytes = 1 << 20

// writeJSON encodes a response object with the given jx encode function.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeErrorMessage emits the error envelope used by every endpoint.
func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(msg)
		e.ObjEnd()
	})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		vErr   *order.ValidationError
		pnfErr *order.ProductNotFoundError
		tfErr  *report.InvalidTimeframeError
	)
	switch {
	case errors.As(err, &vErr):
		writeErrorMessage(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &tfErr):
		writeErrorMessage(w, http.StatusBadRequest, tfErr.Error())
	case errors.As(err, &pnfErr):
		writeErrorMessage(w, http.StatusUnprocessableEntity, pnfErr.Error())
	case errors.Is(err, product.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, product.ErrNotFound.Error())
	case errors.Is(err, customer.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, customer.ErrNotFound.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
	default:
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// readBody drains a capped request body for jx decoding.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return body, nil
}
