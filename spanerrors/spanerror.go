package spanerrors

import (
	"strings"

	uuid "github.com/satori/go.uuid"
	"golang.org/x/xerrors"
)

// SpanError is one occurrence of a SpanErrorType.
type SpanError struct {
	*SpanErrorType

	// Client-facing description of what went wrong.
	Message string

	// Lets clients and logs refer to this occurrence.
	ID uuid.UUID

	// Extra client-facing details, sent as JSON.
	ErrorData map[string]interface{}

	sourceErr   error
	sourceStack []byte
	frame       xerrors.Frame
}

// IsType reports whether the error is of errorType, regardless of the http code
// either was built with.
func (spanError *SpanError) IsType(errorType *SpanErrorType) bool {
	return spanError.SpanErrorType.sameAs(errorType)
}

// Is makes xerrors.Is(err, SomeErrorType) true for any error of that type in err's
// chain.
func (spanError *SpanError) Is(target error) bool {
	targetType, ok := target.(*SpanErrorType)
	return ok && spanError.IsType(targetType)
}

func (spanError *SpanError) Error() string {
	return spanError.SpanErrorType.Error() + " - " + spanError.Message
}

func (spanError *SpanError) Unwrap() error {
	return spanError.sourceErr
}

// LogMessage adds the source error and the stack the error was created on to Error().
// Neither is sent to clients.
func (spanError *SpanError) LogMessage() string {
	builder := strings.Builder{}
	builder.WriteString("\nMESSAGE: ")
	builder.WriteString(spanError.Error())
	builder.WriteString("\nORIGINAL: ")
	if spanError.sourceErr != nil {
		builder.WriteString(spanError.sourceErr.Error())
	} else {
		builder.WriteString("<nil>")
	}
	builder.WriteString("\nPANIC STACK:\n")
	builder.Write(spanError.sourceStack)
	return builder.String()
}

// AsSpanError returns the first SpanError in err's chain. Any other error becomes an
// APIError with err as its source.
func AsSpanError(err error) *SpanError {
	var spanError *SpanError
	if xerrors.As(err, &spanError) {
		return spanError
	}
	return APIError.New(err.Error(), nil, err)
}
