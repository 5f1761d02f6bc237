package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-service/pkg/errors"
)

// DecodeJSON decodes r's body into target, wrapping any failure - an empty
// body included - as ErrInvalidInput.
func DecodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errors.ErrInvalidInput.Wrap(err)
	}
	return nil
}

// GetURLParam reads a chi URL parameter, rejecting a missing or empty value
// as ErrInvalidInput.
func GetURLParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if value == "" {
		return "", errors.ErrInvalidInput.WithDetails("param", name)
	}
	return value, nil
}

// MustGetURLParam is GetURLParam for routes where the router guarantees the
// parameter is present; it panics if that guarantee is violated.
func MustGetURLParam(r *http.Request, name string) string {
	value, err := GetURLParam(r, name)
	if err != nil {
		panic(err)
	}
	return value
}
