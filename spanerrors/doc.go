/*
Package spanerrors defines the error model shared by services built on this module.

Services and clients agree on a consistent set of errors, and on how errors travel
between them, through two objects:

• SpanErrorType defines an error type.

• SpanError is an instance of an error which contains a SpanErrorType.

Default SpanErrorType Variables

Several pointers to SpanErrorType definitions are included in this package. Codes 1000
through 1999 are reserved for them. ConfigurationError is returned when a response
writer cannot be set up for a payload type, and RequestValidationError is what request
binders return for malformed parameters.

Headers

SpanError.ToHeader writes an error to the error-name, error-code, error-message,
error-id and error-data headers, and ErrorFromHeaders reads it back on the client side.
*/
package spanerrors
