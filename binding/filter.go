package binding

import (
	"net/http"

	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/filter"
	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
)

// FilterHeader is the request header filter expressions are read from.
const FilterHeader = "Filter"

// FilterBinder binds the Filter header.
type FilterBinder struct{}

func (binder FilterBinder) Bind(req *http.Request) (filter.Expression, error) {
	return BindFilter(req.Header)
}

/*
BindFilter parses the Filter header of headers. A missing or empty header is
filter.Empty. A malformed header is a RequestValidationError whose message names the
header and holds the parse failure, with the *filter.ParseError as its source.
*/
func BindFilter(headers valueFetcher) (filter.Expression, error) {
	expression, err := filter.Parse(headers.Get(FilterHeader))
	if err == nil {
		return expression, nil
	}

	errorData := map[string]interface{}{"header": FilterHeader}

	var parseErr *filter.ParseError
	if xerrors.As(err, &parseErr) {
		errorData["segment"] = parseErr.Segment
	}

	return filter.Empty, spanerrors.RequestValidationError.New(
		"Could not parse the "+FilterHeader+" header. "+err.Error(),
		errorData,
		err,
	)
}

var _ RequestBinder[filter.Expression] = FilterBinder{}
