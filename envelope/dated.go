package envelope

import (
	"io"
	"net/http"
	"time"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

// DatedWriter writes Dated envelopes. The body is written by the payload writer for T.
type DatedWriter[T any] struct {
	registry encoding.WriterRegistry
	bound    *delegate
}

// NewDatedWriter returns an unspecialized dated writer backed by registry.
func NewDatedWriter[T any](registry encoding.WriterRegistry) *DatedWriter[T] {
	return &DatedWriter[T]{registry: registry}
}

func (writer *DatedWriter[T]) Specialize(
	envelopeType encoding.Argument,
) (BodyWriter[Dated[T]], error) {
	element, err := elementOf(DatedTag, envelopeType)
	if err != nil {
		return nil, err
	}

	bound, err := resolveDelegate(writer.registry, envelopeType, element)
	if err != nil {
		return nil, err
	}

	return &DatedWriter[T]{registry: writer.registry, bound: bound}, nil
}

func (writer *DatedWriter[T]) IsWriteable(
	envelopeType encoding.Argument, mimeType mimetype.MimeType,
) bool {
	if mimeType != mimetype.JSON {
		return false
	}
	if writer.bound != nil {
		return writer.bound.isWriteable(envelopeType, mimeType)
	}

	element, err := elementOf(DatedTag, envelopeType)
	if err != nil {
		return false
	}
	return canResolve(writer.registry, element, mimeType)
}

func (writer *DatedWriter[T]) IsBlocking() bool {
	return writer.bound != nil && writer.bound.writer.IsBlocking()
}

func (writer *DatedWriter[T]) WriteTo(
	envelopeType encoding.Argument,
	mimeType mimetype.MimeType,
	dated Dated[T],
	headers encoding.MutableHeaders,
	out io.Writer,
) error {
	if writer.bound == nil {
		return notSpecialized(envelopeType)
	}

	if lastModified, ok := dated.LastModified(); ok {
		headers.Add(HeaderLastModified, FormatLastModified(lastModified))
	}

	return writer.bound.writer.WriteTo(
		writer.bound.payload, mimeType, dated.body, headers, out,
	)
}

func (writer *DatedWriter[T]) Erase() encoding.BodyWriter {
	return erased[Dated[T]]{writer: writer}
}

// FormatLastModified formats a time the way Last-Modified headers are written: the
// IMF-fixdate form of net/http, in UTC, to the second.
func FormatLastModified(lastModified time.Time) string {
	return lastModified.UTC().Format(http.TimeFormat)
}
