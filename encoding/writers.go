package encoding

import (
	"io"

	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

// MutableHeaders is the outgoing header model a BodyWriter appends to. Add must keep
// any value already stored under the same name. http.Header satisfies it.
type MutableHeaders interface {
	Add(key string, value string)
}

// BodyWriter writes a payload described by an Argument as a given mimetype.
type BodyWriter interface {
	// Whether this writer can write argument as mimeType.
	IsWriteable(argument Argument, mimeType mimetype.MimeType) bool

	// Whether WriteTo may block on I/O, so callers can schedule it off the hot path.
	IsBlocking() bool

	// Write content to writer. Metadata can be appended to headers before the body is
	// written.
	WriteTo(
		argument Argument,
		mimeType mimetype.MimeType,
		content interface{},
		headers MutableHeaders,
		writer io.Writer,
	) error
}

// WriterRegistry resolves a BodyWriter for a payload argument.
type WriterRegistry interface {
	// FindWriter returns the first writer registered for argument that is writeable as
	// one of the accepted mimetypes. ok is false when there is no such writer; no
	// fallback writer is ever guessed.
	FindWriter(
		argument Argument, accepted []mimetype.MimeType,
	) (writer BodyWriter, ok bool)
}

// engineWriter writes payloads through the encoders of a ContentEngine. An empty
// mimeTypes list means no restriction beyond what the engine can encode.
type engineWriter struct {
	engine    ContentEngine
	mimeTypes []mimetype.MimeType
}

func (writer *engineWriter) IsWriteable(
	argument Argument, mimeType mimetype.MimeType,
) bool {
	if len(writer.mimeTypes) > 0 && !mimetype.Contains(writer.mimeTypes, mimeType) {
		return false
	}
	return writer.engine.HandlesEncode(mimeType)
}

// Engine encoders write to an in-memory or already open stream.
func (writer *engineWriter) IsBlocking() bool {
	return false
}

func (writer *engineWriter) WriteTo(
	argument Argument,
	mimeType mimetype.MimeType,
	content interface{},
	headers MutableHeaders,
	out io.Writer,
) error {
	return writer.engine.Encode(mimeType, content, out)
}
