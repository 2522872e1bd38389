// Package binding converts raw request values into typed parameters, or into a
// RequestValidationError the client can act on.
package binding

import (
	"net/http"
)

// RequestBinder binds a typed parameter from a request. Binders hold no state between
// calls and are safe for concurrent use.
type RequestBinder[T any] interface {
	Bind(req *http.Request) (T, error)
}

type valueFetcher interface {
	Get(key string) string
}

type valueSetter interface {
	Set(key string, value string)
}
