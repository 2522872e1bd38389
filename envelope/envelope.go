package envelope

import (
	"time"

	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
)

// Header names written by envelope writers.
const (
	HeaderPageNumber   = "X-Page-Number"
	HeaderPageSize     = "X-Page-Size"
	HeaderPageCount    = "X-Page-Count"
	HeaderTotalCount   = "X-Total-Count"
	HeaderLastModified = "Last-Modified"
)

// Type tags of the envelope arguments.
const (
	PageTag  encoding.TypeTag = "page"
	DatedTag encoding.TypeTag = "dated"
)

// PageOf returns the argument for a page of element.
func PageOf(element encoding.Argument) encoding.Argument {
	return encoding.ArgumentOf(PageTag, element)
}

// DatedOf returns the argument for a dated element.
func DatedOf(element encoding.Argument) encoding.Argument {
	return encoding.ArgumentOf(DatedTag, element)
}

// Page is one page of a larger item collection. Page numbers start at 0.
type Page[T any] struct {
	items          []T
	pageNumber     int
	pageSize       int
	totalItemCount int
}

// NewPage returns a page holding items. pageSize must be positive, pageNumber and
// totalItemCount must not be negative.
func NewPage[T any](
	items []T, pageNumber int, pageSize int, totalItemCount int,
) (Page[T], error) {
	switch {
	case pageNumber < 0:
		return Page[T]{}, xerrors.Errorf("page number %v is negative", pageNumber)
	case pageSize < 1:
		return Page[T]{}, xerrors.Errorf("page size %v is not positive", pageSize)
	case totalItemCount < 0:
		return Page[T]{}, xerrors.Errorf(
			"total item count %v is negative", totalItemCount,
		)
	}

	return Page[T]{
		items:          copyItems(items),
		pageNumber:     pageNumber,
		pageSize:       pageSize,
		totalItemCount: totalItemCount,
	}, nil
}

// Paginate returns page pageNumber of all, cut to pageSize items.
func Paginate[T any](all []T, pageNumber int, pageSize int) (Page[T], error) {
	if pageNumber < 0 || pageSize < 1 {
		// Let NewPage report the bad value.
		return NewPage[T](nil, pageNumber, pageSize, len(all))
	}

	// Compared before multiplying so huge page numbers cannot overflow.
	start := len(all)
	if pageNumber <= len(all)/pageSize {
		start = pageNumber * pageSize
	}
	end := len(all)
	if len(all)-start > pageSize {
		end = start + pageSize
	}

	return NewPage(all[start:end], pageNumber, pageSize, len(all))
}

// Items returns a copy of the page items.
func (page Page[T]) Items() []T {
	return copyItems(page.items)
}

// copyItems never returns nil, so an empty page is written as an empty list.
func copyItems[T any](items []T) []T {
	copied := make([]T, len(items))
	copy(copied, items)
	return copied
}

func (page Page[T]) PageNumber() int {
	return page.pageNumber
}

func (page Page[T]) PageSize() int {
	return page.pageSize
}

func (page Page[T]) TotalItemCount() int {
	return page.totalItemCount
}

// TotalPages is the item count divided by the page size, rounded up.
func (page Page[T]) TotalPages() int {
	if page.pageSize <= 0 {
		return 0
	}
	pages := page.totalItemCount / page.pageSize
	if page.totalItemCount%page.pageSize != 0 {
		pages++
	}
	return pages
}

// Dated is a single body with an optional last-modified time.
type Dated[T any] struct {
	body            T
	lastModified    time.Time
	hasLastModified bool
}

func NewDated[T any](body T) Dated[T] {
	return Dated[T]{body: body}
}

// WithLastModified returns a copy of dated with the last-modified time set.
func (dated Dated[T]) WithLastModified(lastModified time.Time) Dated[T] {
	dated.lastModified = lastModified
	dated.hasLastModified = true
	return dated
}

func (dated Dated[T]) Body() T {
	return dated.body
}

// LastModified returns the last-modified time and whether one is set.
func (dated Dated[T]) LastModified() (time.Time, bool) {
	return dated.lastModified, dated.hasLastModified
}
