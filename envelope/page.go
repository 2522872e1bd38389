package envelope

import (
	"io"
	"strconv"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

// PageWriter writes Page envelopes. The items are written by the payload writer for
// list<T>.
type PageWriter[T any] struct {
	registry encoding.WriterRegistry
	bound    *delegate
}

// NewPageWriter returns an unspecialized page writer backed by registry.
func NewPageWriter[T any](registry encoding.WriterRegistry) *PageWriter[T] {
	return &PageWriter[T]{registry: registry}
}

func (writer *PageWriter[T]) Specialize(
	envelopeType encoding.Argument,
) (BodyWriter[Page[T]], error) {
	element, err := elementOf(PageTag, envelopeType)
	if err != nil {
		return nil, err
	}

	bound, err := resolveDelegate(
		writer.registry, envelopeType, encoding.ListOf(element),
	)
	if err != nil {
		return nil, err
	}

	return &PageWriter[T]{registry: writer.registry, bound: bound}, nil
}

func (writer *PageWriter[T]) IsWriteable(
	envelopeType encoding.Argument, mimeType mimetype.MimeType,
) bool {
	if mimeType != mimetype.JSON {
		return false
	}
	if writer.bound != nil {
		return writer.bound.isWriteable(envelopeType, mimeType)
	}

	element, err := elementOf(PageTag, envelopeType)
	if err != nil {
		return false
	}
	return canResolve(writer.registry, encoding.ListOf(element), mimeType)
}

func (writer *PageWriter[T]) IsBlocking() bool {
	return writer.bound != nil && writer.bound.writer.IsBlocking()
}

func (writer *PageWriter[T]) WriteTo(
	envelopeType encoding.Argument,
	mimeType mimetype.MimeType,
	page Page[T],
	headers encoding.MutableHeaders,
	out io.Writer,
) error {
	if writer.bound == nil {
		return notSpecialized(envelopeType)
	}

	headers.Add(HeaderPageNumber, strconv.Itoa(page.PageNumber()))
	headers.Add(HeaderPageSize, strconv.Itoa(page.PageSize()))
	headers.Add(HeaderPageCount, strconv.Itoa(page.TotalPages()))
	headers.Add(HeaderTotalCount, strconv.Itoa(page.TotalItemCount()))

	return writer.bound.writer.WriteTo(
		writer.bound.payload, mimeType, page.Items(), headers, out,
	)
}

func (writer *PageWriter[T]) Erase() encoding.BodyWriter {
	return erased[Page[T]]{writer: writer}
}
