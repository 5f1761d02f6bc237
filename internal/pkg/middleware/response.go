// Package middleware holds the HTTP middleware chain shared by every
// payment route: request logging, panic recovery, API-key authentication
// and rate limiting.
package middleware

import (
	"encoding/json"
	"net/http"

	pkgerrors "library-service/pkg/errors"
)

// errorResponse is the wire shape of every non-2xx response body.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondError writes a domain error (or a plain error, folded into 500) as
// the standard JSON error envelope.
func RespondError(w http.ResponseWriter, err error) {
	status := pkgerrors.GetHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := errorResponse{Error: errorBody{Code: "INTERNAL_ERROR", Message: err.Error()}}
	var domainErr *pkgerrors.Error
	if pkgerrors.As(err, &domainErr) {
		resp.Error.Code = domainErr.Code
		resp.Error.Message = domainErr.Message
		resp.Error.Details = domainErr.Details
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// RespondJSON writes v as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
