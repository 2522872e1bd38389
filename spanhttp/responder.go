/*
Package spanhttp writes registered payloads and SpanErrors to net/http responses.

A Responder resolves a BodyWriter from the client's Accept header, buffers the body so
writer headers can still be sent, and reports any failure through SpanError headers:

	responder := spanhttp.NewResponder(engine, 16, logger)
	mux.Handle("GET /widgets", responder.Handle(listWidgets))
*/
package spanhttp

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
)

// Engine is what a Responder needs: encoders for error data and request bodies, plus
// the writers registered for payload types. *encoding.SpanEngine satisfies it.
type Engine interface {
	encoding.ContentEngine
	encoding.WriterRegistry
}

// Result is a payload returned from a HandlerFunc.
type Result struct {
	Status   int
	Argument encoding.Argument
	Content  interface{}
}

// HandlerFunc handles a request and returns the payload to write. Returning an error,
// or panicking with a *spanerrors.SpanError, writes the error instead.
type HandlerFunc func(req *http.Request) (Result, error)

// Responder writes payloads and errors to http responses.
type Responder struct {
	engine Engine
	// Buffered channel used as a semaphore for writers that report IsBlocking().
	blocking chan struct{}
	logger   zerolog.Logger
}

// NewResponder returns a Responder. maxBlockingWrites bounds how many blocking
// writers may run at once and is raised to 1 when lower.
func NewResponder(
	engine Engine, maxBlockingWrites int, logger zerolog.Logger,
) *Responder {
	if maxBlockingWrites < 1 {
		maxBlockingWrites = 1
	}
	return &Responder{
		engine:   engine,
		blocking: make(chan struct{}, maxBlockingWrites),
		logger:   logger,
	}
}

// Respond writes content, described by argument, with the first mimetype listed in
// the request's Accept header. A missing Accept header or "*/*" selects JSON. When no
// registered writer accepts that mimetype a NotAcceptableError is written instead.
//
// The returned error is whatever was written to the client as an error response, so
// callers can log it; it is nil on success.
func (responder *Responder) Respond(
	w http.ResponseWriter,
	req *http.Request,
	status int,
	argument encoding.Argument,
	content interface{},
) error {
	mimeType := mimetype.FromAccept(req.Header, mimetype.JSON)

	writer, ok := responder.engine.FindWriter(
		argument, []mimetype.MimeType{mimeType},
	)
	if !ok {
		err := spanerrors.NotAcceptableError.New(
			"No writer for "+argument.Key()+" as "+string(mimeType),
			map[string]interface{}{
				"argument": argument.Key(),
				"mimetype": string(mimeType),
			},
			nil,
		)
		responder.RespondError(w, err)
		return err
	}

	if writer.IsBlocking() {
		select {
		case responder.blocking <- struct{}{}:
			defer func() { <-responder.blocking }()
		case <-req.Context().Done():
			err := xerrors.Errorf(
				"request ended waiting for a blocking writer: %w", req.Context().Err(),
			)
			responder.RespondError(w, err)
			return err
		}
	}

	headers := http.Header{}
	body := bytes.Buffer{}

	err := writer.WriteTo(argument, mimeType, content, headers, &body)
	if err != nil {
		var spanError *spanerrors.SpanError
		if !xerrors.As(err, &spanError) {
			err = spanerrors.ResponseValidationError.New(
				"Error writing "+argument.Key()+" response: "+err.Error(),
				nil,
				err,
			)
		}
		responder.RespondError(w, err)
		return err
	}

	outgoing := w.Header()
	for key, values := range headers {
		for _, value := range values {
			outgoing.Add(key, value)
		}
	}
	outgoing.Set("Content-Type", string(mimeType))

	w.WriteHeader(status)
	if _, err := body.WriteTo(w); err != nil {
		// Headers are already out, so the client cannot be told.
		responder.logger.Warn().Err(err).Msg("error writing response body")
	}
	return nil
}

/*
RespondError writes err as SpanError headers with the error's http code and no body.
Errors that are not SpanErrors are sent as an APIError. Error types with a dynamic
http code are sent as 500.
*/
func (responder *Responder) RespondError(w http.ResponseWriter, err error) {
	spanError := spanerrors.AsSpanError(err)

	statusCode := spanError.StatusCode()

	if headerErr := spanError.ToHeader(w.Header(), responder.engine); headerErr != nil {
		responder.logger.Error().
			Err(headerErr).
			Str("error_id", spanError.ID.String()).
			Msg("error writing error data header")
	}

	event := responder.logger.Debug()
	if statusCode >= http.StatusInternalServerError {
		event = responder.logger.Error()
	}
	event.
		Str("error_id", spanError.ID.String()).
		Str("error_name", spanError.Name()).
		Int("status", statusCode).
		Msg(spanError.LogMessage())

	w.WriteHeader(statusCode)
}

/*
Decode reads the request body into receiver using the mimetype of the Content-Type
header. Failures are returned as a RequestValidationError.
*/
func (responder *Responder) Decode(req *http.Request, receiver interface{}) error {
	mimeType := mimetype.FromHeader(req.Header)

	if err := responder.engine.Decode(mimeType, receiver, req.Body); err != nil {
		return spanerrors.RequestValidationError.New(
			"Could not decode the request body. "+err.Error(),
			map[string]interface{}{"mimetype": string(mimeType)},
			err,
		)
	}
	return nil
}

// Handle adapts handler to an http.Handler, writing its result through Respond and
// its errors through RespondError.
func (responder *Responder) Handle(handler HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		result, err := responder.callHandler(handler, req)
		if err != nil {
			responder.RespondError(w, err)
			return
		}
		_ = responder.Respond(w, req, result.Status, result.Argument, result.Content)
	})
}

// Recovers SpanError panics raised through SpanErrorType.Panic. Any other panic is
// not ours to handle and is re-raised.
func (responder *Responder) callHandler(
	handler HandlerFunc, req *http.Request,
) (result Result, err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		spanError, ok := recovered.(*spanerrors.SpanError)
		if !ok {
			panic(recovered)
		}
		err = spanError
	}()

	return handler(req)
}
