package spanerrors

import (
	"net/http"
	"runtime/debug"
	"strconv"

	uuid "github.com/satori/go.uuid"
	"golang.org/x/xerrors"
)

/*
SpanErrorType is a kind of error a service can send to its clients. Name and ApiCode
must be unique across every service that shares the type.

Types are shared as pointers, so the fields are private and only set through
NewSpanErrorType.
*/
type SpanErrorType struct {
	name     string
	apiCode  int
	httpCode int
}

// NewSpanErrorType declares an error type. Declare each type once, in a package every
// service and client of the ecosystem imports. Pass -1 as httpCode when the status is
// decided when the error is sent.
func NewSpanErrorType(name string, apiCode int, httpCode int) *SpanErrorType {
	return &SpanErrorType{name: name, apiCode: apiCode, httpCode: httpCode}
}

func (errorType *SpanErrorType) Name() string {
	return errorType.name
}

func (errorType *SpanErrorType) ApiCode() int {
	return errorType.apiCode
}

// HttpCode is -1 for types whose status is decided when the error is sent.
func (errorType *SpanErrorType) HttpCode() int {
	return errorType.httpCode
}

// StatusCode is HttpCode, with the dynamic -1 resolved to 500.
func (errorType *SpanErrorType) StatusCode() int {
	if errorType.httpCode < 0 {
		return http.StatusInternalServerError
	}
	return errorType.httpCode
}

// WithHttpCode returns a copy of the type that is sent with httpCode. The copy is
// still the same type for IsType and xerrors.Is.
func (errorType *SpanErrorType) WithHttpCode(httpCode int) *SpanErrorType {
	return NewSpanErrorType(errorType.name, errorType.apiCode, httpCode)
}

// Error lets a type stand in for its errors in comparisons such as xerrors.Is.
func (errorType *SpanErrorType) Error() string {
	return errorType.name + " (" + strconv.Itoa(errorType.apiCode) + ")"
}

// sameAs compares by name and code so copies from WithHttpCode still match.
func (errorType *SpanErrorType) sameAs(other *SpanErrorType) bool {
	return errorType.name == other.name && errorType.apiCode == other.apiCode
}

// New returns an error of this type. source is the error that caused it, if any.
func (errorType *SpanErrorType) New(
	message string,
	errorData map[string]interface{},
	source error,
) *SpanError {
	return &SpanError{
		SpanErrorType: errorType,
		Message:       message,
		ID:            uuid.NewV4(),
		ErrorData:     errorData,
		sourceErr:     source,
		sourceStack:   debug.Stack(),
		frame:         xerrors.Caller(1),
	}
}

/*
Panic panics with a new error of this type. The spanhttp Responder recovers it and
sends it like a returned error, so code deep inside a handler can fail the request
without passing the error back through every caller.
*/
func (errorType *SpanErrorType) Panic(
	message string,
	errorData map[string]interface{},
	source error,
) {
	panic(errorType.New(message, errorData, source))
}
