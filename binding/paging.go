package binding

import (
	"net/http"
	"strconv"

	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
)

// Query parameters of a page request.
const (
	PageParam = "page"
	SizeParam = "size"
)

// PageRequest asks for one page of a collection. Page numbers start at 0.
type PageRequest struct {
	Number int
	Size   int
}

// Dumps paging information to request URL params.
func (pageRequest PageRequest) ToParams(params valueSetter) {
	params.Set(PageParam, strconv.Itoa(pageRequest.Number))
	// Only send the size if it is valid, so the server default applies otherwise.
	if pageRequest.Size > 0 {
		params.Set(SizeParam, strconv.Itoa(pageRequest.Size))
	}
}

// PageRequestBinder binds the page and size query parameters.
type PageRequestBinder struct {
	// Size used when the request does not send one.
	DefaultSize int
	// Largest size a request may ask for. 0 means no limit.
	MaxSize int
}

func getInt(params valueFetcher, fieldName string, defaultValue int) (int, error) {
	value := params.Get(fieldName)
	if value == "" {
		return defaultValue, nil
	}

	valueInt, err := strconv.Atoi(value)
	if err != nil {
		return 0, xerrors.New(fieldName + " is not int")
	}
	return valueInt, nil
}

func (binder PageRequestBinder) Bind(req *http.Request) (PageRequest, error) {
	return binder.BindParams(req.URL.Query())
}

// BindParams binds a PageRequest from already parsed query parameters.
func (binder PageRequestBinder) BindParams(params valueFetcher) (PageRequest, error) {
	number, err := getInt(params, PageParam, 0)
	if err != nil {
		return PageRequest{}, pagingError(PageParam, err)
	}
	if number < 0 {
		return PageRequest{}, pagingError(
			PageParam, xerrors.Errorf("page %v is negative", number),
		)
	}

	size, err := getInt(params, SizeParam, binder.DefaultSize)
	if err != nil {
		return PageRequest{}, pagingError(SizeParam, err)
	}
	if size < 1 {
		return PageRequest{}, pagingError(
			SizeParam, xerrors.Errorf("size %v is not positive", size),
		)
	}
	if binder.MaxSize > 0 && size > binder.MaxSize {
		return PageRequest{}, pagingError(
			SizeParam,
			xerrors.Errorf("size %v is over the limit of %v", size, binder.MaxSize),
		)
	}

	return PageRequest{Number: number, Size: size}, nil
}

func pagingError(param string, err error) error {
	return spanerrors.RequestValidationError.New(
		"Could not parse the "+param+" query parameter. "+err.Error(),
		map[string]interface{}{"param": param},
		err,
	)
}

var _ RequestBinder[PageRequest] = PageRequestBinder{}
