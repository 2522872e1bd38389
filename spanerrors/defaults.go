package spanerrors

// Generic error returned by a handler. Anything that is not a SpanError is sent as
// one.
var APIError = NewSpanErrorType("APIError", 1000, 502)

// The route does not handle the request method.
var InvalidMethodError = NewSpanErrorType("InvalidMethodError", 1001, 405)

// There is no content to return.
var NothingToReturnError = NewSpanErrorType("NothingToReturnError", 1002, 400)

// The request body or parameters could not be read or are invalid.
var RequestValidationError = NewSpanErrorType("RequestValidationError", 1003, 400)

// The request goes over a limit of the API.
var APILimitError = NewSpanErrorType("APILimitError", 1004, 400)

// The response body could not be written.
var ResponseValidationError = NewSpanErrorType("ResponseValidationError", 1005, 400)

// Raised by the server framework for failures the service does not handle. App logic
// should not use it.
var ServerError = NewSpanErrorType("ServerError", 1006, -1)

// No payload writer is registered for a type a response writer was set up for.
// Raised when the response writer is set up, never while writing.
var ConfigurationError = NewSpanErrorType("ConfigurationError", 1007, 500)

// No registered writer can write the response payload as the mimetype the client
// accepts.
var NotAcceptableError = NewSpanErrorType("NotAcceptableError", 1008, 406)

// ErrorList holds the types declared by this package. Their codes are in 1000-1999,
// which is reserved for them.
var ErrorList = []*SpanErrorType{
	APIError,
	InvalidMethodError,
	NothingToReturnError,
	RequestValidationError,
	APILimitError,
	ResponseValidationError,
	ServerError,
	ConfigurationError,
	NotAcceptableError,
}

// ErrorTypeCodeIndex maps the api code of each type in ErrorList to the type. Copy it
// and add your own types to read them with ErrorFromHeaders.
var ErrorTypeCodeIndex = IndexErrorTypes(ErrorList...)

// IndexErrorTypes maps each type's api code to the type. Later types replace earlier
// ones with the same code.
func IndexErrorTypes(errorTypes ...*SpanErrorType) map[int]*SpanErrorType {
	index := make(map[int]*SpanErrorType, len(errorTypes))
	for _, errorType := range errorTypes {
		index[errorType.apiCode] = errorType
	}
	return index
}
