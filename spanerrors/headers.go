package spanerrors

import (
	"bytes"
	"strconv"
	"strings"

	uuid "github.com/satori/go.uuid"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

// Headers an error is sent in.
const (
	HeaderName    = "error-name"
	HeaderCode    = "error-code"
	HeaderMessage = "error-message"
	HeaderID      = "error-id"
	HeaderData    = "error-data"
)

// http.Header satisfies both.
type headerSetter interface {
	Set(key string, value string)
}

type headerFetcher interface {
	Get(key string) string
}

// ToHeader writes the error to headers. ErrorData is encoded as JSON with
// dataEngine, and the header is left out when there is none.
func (spanError *SpanError) ToHeader(
	headers headerSetter, dataEngine encoding.ContentEngine,
) error {
	if spanError.ErrorData != nil {
		data := bytes.Buffer{}
		err := dataEngine.Encode(mimetype.JSON, spanError.ErrorData, &data)
		if err != nil {
			return xerrors.Errorf("error encoding error data: %w", err)
		}
		headers.Set(HeaderData, data.String())
	}

	headers.Set(HeaderName, spanError.name)
	headers.Set(HeaderCode, strconv.Itoa(spanError.apiCode))
	headers.Set(HeaderMessage, spanError.Message)
	headers.Set(HeaderID, spanError.ID.String())
	return nil
}

/*
ErrorFromHeaders reads an error written by ToHeader, resolving its type through
errorTypeCodeIndex.

hasError is false, with a non-nil err, when headers carry no error code. hasError is
true, with a non-nil err, when they carry an error code but the error cannot be
rebuilt from them.
*/
func ErrorFromHeaders(
	headers headerFetcher,
	dataEngine encoding.ContentEngine,
	errorTypeCodeIndex map[int]*SpanErrorType,
) (spanError *SpanError, hasError bool, err error) {
	codeValue := headers.Get(HeaderCode)
	if codeValue == "" {
		return nil, false, xerrors.New("no error in headers")
	}
	code, err := strconv.Atoi(codeValue)
	if err != nil {
		return nil, false, xerrors.New("error-code not int")
	}

	errorType, err := lookupType(errorTypeCodeIndex, code)
	if err != nil {
		return nil, true, err
	}

	id, err := uuid.FromString(headers.Get(HeaderID))
	if err != nil {
		return nil, true, xerrors.New("error ID is not valid UUID")
	}

	errorData, err := decodeErrorData(headers.Get(HeaderData), dataEngine)
	if err != nil {
		return nil, true, err
	}

	spanError = errorType.New(headers.Get(HeaderMessage), errorData, nil)
	spanError.ID = id
	return spanError, true, nil
}

func lookupType(index map[int]*SpanErrorType, code int) (*SpanErrorType, error) {
	if index == nil {
		return nil, xerrors.New("no error index provided")
	}
	errorType, ok := index[code]
	if !ok {
		return nil, xerrors.Errorf("no known error for code %v", code)
	}
	return errorType, nil
}

// A missing header decodes to an empty map.
func decodeErrorData(
	value string, dataEngine encoding.ContentEngine,
) (map[string]interface{}, error) {
	errorData := make(map[string]interface{})
	if value == "" {
		return errorData, nil
	}

	err := dataEngine.Decode(mimetype.JSON, &errorData, strings.NewReader(value))
	if err != nil {
		return nil, xerrors.New("error data could not be parsed as JSON")
	}
	return errorData, nil
}
