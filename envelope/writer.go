package envelope

import (
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
)

// ErrMissingTypeParameter is returned when an envelope argument does not carry exactly
// one element type parameter, or is not an argument of the writer's envelope. This is
// a programming error, unlike a spanerrors.ConfigurationError.
var ErrMissingTypeParameter = xerrors.New("envelope type parameter missing")

// BodyWriter writes envelopes of type E.
type BodyWriter[E any] interface {
	// Specialize returns a writer bound to the payload writer for the element type of
	// envelopeType. The payload writer is resolved immediately.
	Specialize(envelopeType encoding.Argument) (BodyWriter[E], error)

	// Whether envelopeType can be written as mimeType. Only application/json is ever
	// writeable.
	IsWriteable(envelopeType encoding.Argument, mimeType mimetype.MimeType) bool

	// Whether the bound payload writer blocks.
	IsBlocking() bool

	// Adds the envelope headers to headers, then writes the payload to writer through
	// the bound payload writer. Payload writer errors are returned as is.
	WriteTo(
		envelopeType encoding.Argument,
		mimeType mimetype.MimeType,
		envelope E,
		headers encoding.MutableHeaders,
		writer io.Writer,
	) error

	// Erase adapts the writer to encoding.BodyWriter so it can be registered next to
	// untyped payload writers.
	Erase() encoding.BodyWriter
}

// Registry both resolves and stores writers. *encoding.SpanEngine satisfies it.
type Registry interface {
	encoding.WriterRegistry
	RegisterWriter(argument encoding.Argument, writer encoding.BodyWriter)
}

// Envelopes are written as JSON only.
var envelopeMimeTypes = []mimetype.MimeType{mimetype.JSON}

// delegate is a payload writer resolved for one envelope type.
type delegate struct {
	// Key of the envelope argument this delegate was resolved for.
	envelopeKey string
	// Argument the payload is written as.
	payload encoding.Argument
	writer  encoding.BodyWriter
}

func (bound *delegate) isWriteable(
	envelopeType encoding.Argument, mimeType mimetype.MimeType,
) bool {
	return envelopeType.Key() == bound.envelopeKey &&
		bound.writer.IsWriteable(bound.payload, mimeType)
}

// elementOf returns the single element parameter of an envelope argument.
func elementOf(
	tag encoding.TypeTag, envelopeType encoding.Argument,
) (encoding.Argument, error) {
	if envelopeType.Tag != tag || len(envelopeType.Parameters) != 1 {
		return encoding.Argument{}, xerrors.Errorf(
			"expected %v<element>, got %v: %w",
			tag, envelopeType, ErrMissingTypeParameter,
		)
	}
	return envelopeType.Parameters[0], nil
}

// resolveDelegate looks up the JSON payload writer for payload.
func resolveDelegate(
	registry encoding.WriterRegistry,
	envelopeType encoding.Argument,
	payload encoding.Argument,
) (*delegate, error) {
	writer, ok := registry.FindWriter(payload, envelopeMimeTypes)
	if !ok {
		return nil, spanerrors.ConfigurationError.New(
			"No JSON message writer present for "+payload.Key(),
			map[string]interface{}{
				"envelope": envelopeType.Key(),
				"payload":  payload.Key(),
			},
			nil,
		)
	}

	log.Debug().
		Str("envelope", envelopeType.Key()).
		Str("payload", payload.Key()).
		Bool("blocking", writer.IsBlocking()).
		Msg("specialized envelope writer")

	return &delegate{
		envelopeKey: envelopeType.Key(),
		payload:     payload,
		writer:      writer,
	}, nil
}

// canResolve reports whether a payload writer could be found for mimeType without
// binding one.
func canResolve(
	registry encoding.WriterRegistry,
	payload encoding.Argument,
	mimeType mimetype.MimeType,
) bool {
	if registry == nil {
		return false
	}
	_, ok := registry.FindWriter(payload, []mimetype.MimeType{mimeType})
	return ok
}

func notSpecialized(envelopeType encoding.Argument) error {
	return spanerrors.ConfigurationError.New(
		"envelope writer was not specialized before writing "+envelopeType.Key(),
		nil,
		nil,
	)
}

// erased adapts a BodyWriter[E] to encoding.BodyWriter.
type erased[E any] struct {
	writer BodyWriter[E]
}

func (adapter erased[E]) IsWriteable(
	argument encoding.Argument, mimeType mimetype.MimeType,
) bool {
	return adapter.writer.IsWriteable(argument, mimeType)
}

func (adapter erased[E]) IsBlocking() bool {
	return adapter.writer.IsBlocking()
}

func (adapter erased[E]) WriteTo(
	argument encoding.Argument,
	mimeType mimetype.MimeType,
	content interface{},
	headers encoding.MutableHeaders,
	writer io.Writer,
) error {
	switch envelope := content.(type) {
	case E:
		return adapter.writer.WriteTo(argument, mimeType, envelope, headers, writer)
	case *E:
		if envelope != nil {
			return adapter.writer.WriteTo(
				argument, mimeType, *envelope, headers, writer,
			)
		}
	}

	var expected E
	return xerrors.Errorf("%v writer expects %T, got %T", argument, expected, content)
}

// register specializes writer for envelopeType and stores the erased result in
// registry.
func register[E any](
	registry Registry, writer BodyWriter[E], envelopeType encoding.Argument,
) (BodyWriter[E], error) {
	specialized, err := writer.Specialize(envelopeType)
	if err != nil {
		return nil, err
	}

	registry.RegisterWriter(envelopeType, specialized.Erase())
	return specialized, nil
}

// RegisterPage specializes a page writer for element and registers it under
// page<element>.
func RegisterPage[T any](
	registry Registry, element encoding.Argument,
) (BodyWriter[Page[T]], error) {
	return register[Page[T]](registry, NewPageWriter[T](registry), PageOf(element))
}

// RegisterDated specializes a dated writer for element and registers it under
// dated<element>.
func RegisterDated[T any](
	registry Registry, element encoding.Argument,
) (BodyWriter[Dated[T]], error) {
	return register[Dated[T]](registry, NewDatedWriter[T](registry), DatedOf(element))
}
