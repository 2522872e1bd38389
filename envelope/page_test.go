package envelope_test

//revive:disable:import-shadowing reason: Disabled for assert := assert.New(), which is
// the preferred method of using multiple asserts in a test.

import (
	"bytes"
	"math"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/envelope"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
)

func specializePage(
	test *testing.T, registry encoding.WriterRegistry,
) envelope.BodyWriter[envelope.Page[Widget]] {
	writer, err := envelope.NewPageWriter[Widget](registry).Specialize(
		envelope.PageOf(widgetArg),
	)
	if err != nil {
		test.Fatal(err)
	}
	return writer
}

func TestPageHeadersInOrder(test *testing.T) {
	testCases := []struct {
		pageNumber     int
		pageSize       int
		totalItemCount int
		totalPages     int
	}{
		{0, 1, 0, 0},
		{0, 10, 5, 1},
		{1, 10, 10, 1},
		{2, 10, 25, 3},
		{7, 3, 100, 34},
		{0, 50, 1000000, 20000},
		{0, 10, math.MaxInt, math.MaxInt/10 + 1},
		{0, math.MaxInt, math.MaxInt, 1},
		{0, math.MaxInt - 1, math.MaxInt, 2},
	}

	engine := createEngine(test)
	engine.RegisterType("widget")
	writer := specializePage(test, engine)

	for _, thisCase := range testCases {
		name := strconv.Itoa(thisCase.pageNumber) + "-" +
			strconv.Itoa(thisCase.pageSize) + "-" +
			strconv.Itoa(thisCase.totalItemCount)

		test.Run(name, func(test *testing.T) {
			assert := assert.New(test)

			page, err := envelope.NewPage(
				[]Widget{{Name: "gear"}},
				thisCase.pageNumber,
				thisCase.pageSize,
				thisCase.totalItemCount,
			)
			if err != nil {
				test.Fatal(err)
			}

			headers := &recordingHeaders{}
			err = writer.WriteTo(
				envelope.PageOf(widgetArg),
				mimetype.JSON,
				page,
				headers,
				new(bytes.Buffer),
			)
			assert.NoError(err)

			assert.Equal(
				[]headerRecord{
					{envelope.HeaderPageNumber, strconv.Itoa(thisCase.pageNumber)},
					{envelope.HeaderPageSize, strconv.Itoa(thisCase.pageSize)},
					{envelope.HeaderPageCount, strconv.Itoa(thisCase.totalPages)},
					{
						envelope.HeaderTotalCount,
						strconv.Itoa(thisCase.totalItemCount),
					},
				},
				headers.added,
			)
		})
	}
}

func TestPageBodyIsItemList(test *testing.T) {
	assert := assert.New(test)

	engine := createEngine(test)
	engine.RegisterType("widget")
	writer := specializePage(test, engine)

	page, err := envelope.NewPage(
		[]Widget{{Name: "gear", Count: 2}, {Name: "cog", Count: 5}}, 0, 2, 2,
	)
	if err != nil {
		test.Fatal(err)
	}

	body := new(bytes.Buffer)
	err = writer.WriteTo(
		envelope.PageOf(widgetArg), mimetype.JSON, page, http.Header{}, body,
	)

	assert.NoError(err)
	assert.JSONEq(
		`[{"Name":"gear","Count":2},{"Name":"cog","Count":5}]`, body.String(),
	)
}

func TestEmptyPageBodyIsEmptyList(test *testing.T) {
	engine := createEngine(test)
	engine.RegisterType("widget")
	writer := specializePage(test, engine)

	page, err := envelope.NewPage[Widget](nil, 0, 10, 0)
	if err != nil {
		test.Fatal(err)
	}

	body := new(bytes.Buffer)
	err = writer.WriteTo(
		envelope.PageOf(widgetArg), mimetype.JSON, page, http.Header{}, body,
	)

	assert.NoError(test, err)
	assert.Equal(test, `[]`, body.String())
}

func TestPageHeadersAreAppended(test *testing.T) {
	assert := assert.New(test)

	engine := createEngine(test)
	engine.RegisterType("widget")
	writer := specializePage(test, engine)

	headers := http.Header{}
	headers.Add(envelope.HeaderPageNumber, "existing")

	page, _ := envelope.NewPage([]Widget{}, 3, 10, 40)
	err := writer.WriteTo(
		envelope.PageOf(widgetArg), mimetype.JSON, page, headers, new(bytes.Buffer),
	)

	assert.NoError(err)
	assert.Equal(
		[]string{"existing", "3"}, headers.Values(envelope.HeaderPageNumber),
	)
	assert.Equal([]string{"4"}, headers.Values(envelope.HeaderPageCount))
}

func TestPageDelegatesToList(test *testing.T) {
	assert := assert.New(test)

	engine := createEngine(test)
	stub := &stubWriter{mimeTypes: []mimetype.MimeType{mimetype.JSON}}
	engine.RegisterWriter(encoding.ListOf(widgetArg), stub)

	writer := specializePage(test, engine)

	items := []Widget{{Name: "gear"}}
	page, _ := envelope.NewPage(items, 0, 1, 1)

	err := writer.WriteTo(
		envelope.PageOf(widgetArg),
		mimetype.JSON,
		page,
		&recordingHeaders{},
		new(bytes.Buffer),
	)

	assert.NoError(err)
	assert.Equal(1, stub.calls)
	assert.Equal(encoding.ListOf(widgetArg), stub.lastArg)
	assert.Equal(items, stub.lastContent)
}

func TestPagePayloadErrorUnchanged(test *testing.T) {
	engine := createEngine(test)
	stub := &stubWriter{
		mimeTypes: []mimetype.MimeType{mimetype.JSON},
		err:       errPayload,
	}
	engine.RegisterWriter(encoding.ListOf(widgetArg), stub)

	writer := specializePage(test, engine)
	page, _ := envelope.NewPage([]Widget{}, 0, 1, 0)

	err := writer.WriteTo(
		envelope.PageOf(widgetArg),
		mimetype.JSON,
		page,
		&recordingHeaders{},
		new(bytes.Buffer),
	)

	assert.Same(test, errPayload, err)
}

func TestSpecializePageNoDelegate(test *testing.T) {
	assert := assert.New(test)

	engine := createEngine(test)
	stub := &stubWriter{mimeTypes: []mimetype.MimeType{mimetype.JSON}}
	// Registered for the element only, pages need list<widget>.
	engine.RegisterWriter(widgetArg, stub)

	writer, err := envelope.NewPageWriter[Widget](engine).Specialize(
		envelope.PageOf(widgetArg),
	)

	assert.Nil(writer)
	assert.True(xerrors.Is(err, spanerrors.ConfigurationError))
	assert.False(xerrors.Is(err, envelope.ErrMissingTypeParameter))
	assert.Contains(err.Error(), "No JSON message writer present for list<widget>")
	assert.Equal(0, stub.calls)
}

func TestSpecializePageNonJSONDelegate(test *testing.T) {
	engine := createEngine(test)
	engine.RegisterType("widget", mimetype.BSON)

	_, err := envelope.NewPageWriter[Widget](engine).Specialize(
		envelope.PageOf(widgetArg),
	)

	assert.True(test, xerrors.Is(err, spanerrors.ConfigurationError))
}

func TestSpecializePageMissingParameter(test *testing.T) {
	testCases := []struct {
		name     string
		argument encoding.Argument
	}{
		{"NoParameter", encoding.ArgumentOf(envelope.PageTag)},
		{
			"TwoParameters",
			encoding.ArgumentOf(envelope.PageTag, widgetArg, widgetArg),
		},
		{"WrongEnvelope", envelope.DatedOf(widgetArg)},
	}

	engine := createEngine(test)
	engine.RegisterType("widget")

	for _, thisCase := range testCases {
		test.Run(thisCase.name, func(test *testing.T) {
			assert := assert.New(test)

			writer, err := envelope.NewPageWriter[Widget](engine).Specialize(
				thisCase.argument,
			)

			assert.Nil(writer)
			assert.True(xerrors.Is(err, envelope.ErrMissingTypeParameter))
			assert.False(xerrors.Is(err, spanerrors.ConfigurationError))
		})
	}
}

func TestPageWriteableOnlyAsJSON(test *testing.T) {
	assert := assert.New(test)

	engine := createEngine(test)
	engine.RegisterType("widget")
	writer := specializePage(test, engine)

	pageArg := envelope.PageOf(widgetArg)

	assert.True(writer.IsWriteable(pageArg, mimetype.JSON))
	// The engine can write widgets as BSON and YAML, the envelope still refuses.
	assert.False(writer.IsWriteable(pageArg, mimetype.BSON))
	assert.False(writer.IsWriteable(pageArg, mimetype.YAML))
	assert.False(writer.IsWriteable(pageArg, mimetype.TEXT))
	// Bound to widgets only.
	assert.False(
		writer.IsWriteable(
			envelope.PageOf(encoding.ArgumentOf("gadget")), mimetype.JSON,
		),
	)
}

func TestUnspecializedPageWriteable(test *testing.T) {
	assert := assert.New(test)

	engine := createEngine(test)
	engine.RegisterType("widget")
	writer := envelope.NewPageWriter[Widget](engine)

	assert.True(writer.IsWriteable(envelope.PageOf(widgetArg), mimetype.JSON))
	assert.False(writer.IsWriteable(envelope.PageOf(widgetArg), mimetype.BSON))
	assert.False(
		writer.IsWriteable(
			envelope.PageOf(encoding.ArgumentOf("gadget")), mimetype.JSON,
		),
	)
	assert.False(
		writer.IsWriteable(encoding.ArgumentOf(envelope.PageTag), mimetype.JSON),
	)
	assert.False(writer.IsBlocking())
}

func TestUnspecializedPageWriteFails(test *testing.T) {
	assert := assert.New(test)

	headers := &recordingHeaders{}
	writer := envelope.NewPageWriter[Widget](createEngine(test))
	page, _ := envelope.NewPage([]Widget{}, 0, 1, 0)

	err := writer.WriteTo(
		envelope.PageOf(widgetArg), mimetype.JSON, page, headers, new(bytes.Buffer),
	)

	assert.True(xerrors.Is(err, spanerrors.ConfigurationError))
	assert.Empty(headers.added)
}

func TestPageBlockingFollowsDelegate(test *testing.T) {
	for _, blocking := range []bool{true, false} {
		test.Run(strconv.FormatBool(blocking), func(test *testing.T) {
			engine := createEngine(test)
			engine.RegisterWriter(
				encoding.ListOf(widgetArg),
				&stubWriter{
					mimeTypes: []mimetype.MimeType{mimetype.JSON},
					blocking:  blocking,
				},
			)

			writer := specializePage(test, engine)
			assert.Equal(test, blocking, writer.IsBlocking())
		})
	}
}

func TestRegisterPage(test *testing.T) {
	assert := assert.New(test)

	engine := createEngine(test)
	engine.RegisterType("widget")

	_, err := envelope.RegisterPage[Widget](engine, widgetArg)
	if err != nil {
		test.Fatal(err)
	}

	pageArg := envelope.PageOf(widgetArg)

	_, ok := engine.FindWriter(pageArg, []mimetype.MimeType{mimetype.BSON})
	assert.False(ok)

	writer, ok := engine.FindWriter(pageArg, []mimetype.MimeType{mimetype.JSON})
	if !assert.True(ok) {
		return
	}

	page, _ := envelope.NewPage([]Widget{{Name: "gear"}}, 0, 5, 1)

	headers := http.Header{}
	body := new(bytes.Buffer)
	assert.NoError(writer.WriteTo(pageArg, mimetype.JSON, page, headers, body))
	assert.JSONEq(`[{"Name":"gear","Count":0}]`, body.String())
	assert.Equal("1", headers.Get(envelope.HeaderTotalCount))

	// Pointers to envelopes are accepted too.
	assert.NoError(
		writer.WriteTo(pageArg, mimetype.JSON, &page, http.Header{}, body),
	)

	err = writer.WriteTo(pageArg, mimetype.JSON, "not a page", headers, body)
	assert.Error(err)
}

func TestRegisterPageNoDelegate(test *testing.T) {
	assert := assert.New(test)
	engine := createEngine(test)

	writer, err := envelope.RegisterPage[Widget](engine, widgetArg)

	assert.Nil(writer)
	assert.True(xerrors.Is(err, spanerrors.ConfigurationError))

	_, ok := engine.FindWriter(
		envelope.PageOf(widgetArg), []mimetype.MimeType{mimetype.JSON},
	)
	assert.False(ok)
}
