package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/mcoot/dutyledger/internal/api/apierr"
)

// maxBodyBytes bounds request bodies; every request type is a handful of short strings
const maxBodyBytes = 64 << 10

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody reads a JSON request body into v. Unknown fields and trailing
// data are rejected. An empty body is accepted only when optional is set,
// leaving v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return NewInvalidRequestError("invalid request body")
	}
	if dec.More() {
		return NewInvalidRequestError("request body must contain a single JSON object")
	}
	return nil
}

// pathName returns the {name} route variable. The router matches on the
// escaped path so that names may contain '/', which leaves the variable
// percent-encoded.
func pathName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		return "", NewInvalidRequestError("person name is not a valid path segment")
	}
	return name, nil
}
