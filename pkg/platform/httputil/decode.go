package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "campuscard/pkg/domain-errors"
)

// Request DTOs opt into preparation steps by implementing these.
type (
	Sanitizable  interface{ Sanitize() }
	Normalizable interface{ Normalize() }
	Validatable  interface{ Validate() error }
)

// DecodeJSON reads exactly one JSON document from the body into T.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var req T
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return nil, decodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body must hold a single JSON object")
	}
	return &req, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return dErrors.Wrap(err, dErrors.CodeTooLarge, "request body too large")
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
}

// PrepareRequest sanitizes, then normalizes, then validates req.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	v, ok := req.(Validatable)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
}

// DecodeAndPrepare decodes and prepares the body, writing the error response
// itself when either step fails.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, requestID string) (*T, bool) {
	req, err := DecodeJSON[T](r)
	if err == nil {
		err = PrepareRequest(req)
	}
	if err != nil {
		logger.WarnContext(r.Context(), "rejected request body",
			"error", err,
			"code", dErrors.CodeOf(err),
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
