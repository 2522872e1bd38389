package main

//revive:disable:import-shadowing reason: Disabled for assert := assert.New(), which is
// the preferred method of using multiple asserts in a test.

import (
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illuscio-dev/spanenvelope-go/config"
	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/envelope"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
)

var seeded = time.Date(2021, 6, 7, 8, 9, 10, 0, time.UTC)

var created = time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestHandler(test *testing.T) (http.Handler, *encoding.SpanEngine) {
	cfg := config.Default()
	cfg.Paging.DefaultSize = 2
	cfg.Paging.MaxSize = 5

	handler, err := newHandler(
		cfg,
		zerolog.Nop(),
		newWidgetStore(demoWidgets(seeded)...),
		func() time.Time { return created },
	)
	require.NoError(test, err)

	engine, err := encoding.NewContentEngine(false)
	require.NoError(test, err)
	return handler, engine
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestListWidgets(test *testing.T) {
	handler, engine := newTestHandler(test)

	testCases := []struct {
		name     string
		target   string
		filter   string
		names    []string
		pageInfo envelope.PageInfo
	}{
		{
			name:     "DefaultSize",
			target:   "/widgets",
			names:    []string{"anvil", "bolt"},
			pageInfo: envelope.PageInfo{PageNumber: 0, PageSize: 2, PageCount: 3, TotalCount: 6},
		},
		{
			name:     "LastPage",
			target:   "/widgets?page=1&size=4",
			names:    []string{"gear", "spring"},
			pageInfo: envelope.PageInfo{PageNumber: 1, PageSize: 4, PageCount: 2, TotalCount: 6},
		},
		{
			name:     "PastTheEnd",
			target:   "/widgets?page=9",
			names:    []string{},
			pageInfo: envelope.PageInfo{PageNumber: 9, PageSize: 2, PageCount: 3, TotalCount: 6},
		},
		{
			name:     "Filtered",
			target:   "/widgets?size=5",
			filter:   "color=brass",
			names:    []string{"cog", "gear"},
			pageInfo: envelope.PageInfo{PageNumber: 0, PageSize: 5, PageCount: 1, TotalCount: 2},
		},
		{
			name:     "NumericFilter",
			target:   "/widgets?size=5",
			filter:   "count>10,count<100",
			names:    []string{"cog", "gear", "spring"},
			pageInfo: envelope.PageInfo{PageNumber: 0, PageSize: 5, PageCount: 1, TotalCount: 3},
		},
		{
			name:     "UnknownProperty",
			target:   "/widgets",
			filter:   "weight>1",
			names:    []string{},
			pageInfo: envelope.PageInfo{PageNumber: 0, PageSize: 2, PageCount: 0, TotalCount: 0},
		},
	}

	for _, thisCase := range testCases {
		test.Run(thisCase.name, func(test *testing.T) {
			assert := assert.New(test)

			req := httptest.NewRequest(http.MethodGet, thisCase.target, nil)
			if thisCase.filter != "" {
				req.Header.Set("Filter", thisCase.filter)
			}

			recorder := serve(handler, req)
			if !assert.Equal(http.StatusOK, recorder.Code) {
				return
			}

			pageInfo, err := envelope.PageInfoFromHeaders(recorder.Header())
			assert.NoError(err)
			assert.Equal(thisCase.pageInfo, pageInfo)

			var widgets []Widget
			err = engine.Decode(mimetype.JSON, &widgets, recorder.Body)
			assert.NoError(err)

			names := make([]string, 0, len(widgets))
			for _, widget := range widgets {
				names = append(names, widget.Name)
			}
			assert.Equal(thisCase.names, names)
		})
	}
}

func TestListWidgetsHugePage(test *testing.T) {
	assert := assert.New(test)
	handler, engine := newTestHandler(test)

	page := math.MaxInt/2 + 1
	req := httptest.NewRequest(
		http.MethodGet, "/widgets?size=3&page="+strconv.Itoa(page), nil,
	)

	recorder := serve(handler, req)
	if !assert.Equal(http.StatusOK, recorder.Code) {
		return
	}

	pageInfo, err := envelope.PageInfoFromHeaders(recorder.Header())
	assert.NoError(err)
	assert.Equal(
		envelope.PageInfo{PageNumber: page, PageSize: 3, PageCount: 2, TotalCount: 6},
		pageInfo,
	)

	var widgets []Widget
	assert.NoError(engine.Decode(mimetype.JSON, &widgets, recorder.Body))
	assert.Empty(widgets)
}

func TestListWidgetsBadRequest(test *testing.T) {
	handler, engine := newTestHandler(test)

	testCases := []struct {
		name    string
		target  string
		filter  string
		message string
	}{
		{
			name:    "BadFilter",
			target:  "/widgets",
			filter:  "color~brass",
			message: "Could not parse the Filter header. The filter condition must match '^(.+)([<>=])(.*)$' but is 'color~brass'",
		},
		{
			name:    "SizeOverLimit",
			target:  "/widgets?size=6",
			message: "Could not parse the size query parameter. size 6 is over the limit of 5",
		},
		{
			name:    "NegativePage",
			target:  "/widgets?page=-1",
			message: "Could not parse the page query parameter. page -1 is negative",
		},
	}

	for _, thisCase := range testCases {
		test.Run(thisCase.name, func(test *testing.T) {
			assert := assert.New(test)

			req := httptest.NewRequest(http.MethodGet, thisCase.target, nil)
			if thisCase.filter != "" {
				req.Header.Set("Filter", thisCase.filter)
			}

			recorder := serve(handler, req)
			assert.Equal(http.StatusBadRequest, recorder.Code)

			spanError, hasError, err := spanerrors.ErrorFromHeaders(
				recorder.Header(), engine, errorIndex(),
			)
			assert.NoError(err)
			assert.True(hasError)
			assert.True(spanError.IsType(spanerrors.RequestValidationError))
			assert.Equal(thisCase.message, spanError.Message)
		})
	}
}

func TestListWidgetsNotAcceptable(test *testing.T) {
	handler, _ := newTestHandler(test)

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	req.Header.Set("Accept", "application/yaml")

	recorder := serve(handler, req)
	assert.Equal(test, http.StatusNotAcceptable, recorder.Code)
	assert.Equal(test, "NotAcceptableError", recorder.Header().Get("error-name"))
}

func TestGetWidget(test *testing.T) {
	assert := assert.New(test)
	handler, engine := newTestHandler(test)

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/widgets/cog", nil))
	assert.Equal(http.StatusOK, recorder.Code)
	assert.Equal("Mon, 07 Jun 2021 08:09:10 GMT", recorder.Header().Get("Last-Modified"))

	widget := Widget{}
	assert.NoError(engine.Decode(mimetype.JSON, &widget, recorder.Body))
	assert.Equal(Widget{Name: "cog", Color: "brass", Count: 42}, widget)
}

func TestGetWidgetNotFound(test *testing.T) {
	assert := assert.New(test)
	handler, engine := newTestHandler(test)

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/widgets/sprocket", nil))
	assert.Equal(http.StatusNotFound, recorder.Code)

	spanError, hasError, err := spanerrors.ErrorFromHeaders(
		recorder.Header(), engine, errorIndex(),
	)
	assert.NoError(err)
	assert.True(hasError)
	assert.True(spanError.IsType(WidgetNotFoundError))
	assert.Equal("sprocket", spanError.ErrorData["name"])
}

func TestCreateWidget(test *testing.T) {
	assert := assert.New(test)
	handler, engine := newTestHandler(test)

	req := httptest.NewRequest(
		http.MethodPost,
		"/widgets",
		strings.NewReader("name: sprocket\ncolor: green\ncount: 9\n"),
	)
	req.Header.Set("Content-Type", "application/yaml")

	recorder := serve(handler, req)
	assert.Equal(http.StatusCreated, recorder.Code)
	assert.Equal("Sun, 02 Jan 2022 03:04:05 GMT", recorder.Header().Get("Last-Modified"))

	recorder = serve(handler, httptest.NewRequest(http.MethodGet, "/widgets/sprocket", nil))
	assert.Equal(http.StatusOK, recorder.Code)

	widget := Widget{}
	assert.NoError(engine.Decode(mimetype.JSON, &widget, recorder.Body))
	assert.Equal(Widget{Name: "sprocket", Color: "green", Count: 9}, widget)
}

func TestCreateWidgetInvalid(test *testing.T) {
	testCases := []struct {
		name        string
		body        string
		contentType string
		message     string
	}{
		{
			name:        "NoName",
			body:        `{"name": " ", "count": 1}`,
			contentType: "application/json",
			message:     "Widget name is required",
		},
		{
			name:    "NoContentType",
			body:    `{"name": "sprocket"}`,
			message: "Could not decode the request body. mimetype is unknown and sniffing is disabled",
		},
	}

	for _, thisCase := range testCases {
		test.Run(thisCase.name, func(test *testing.T) {
			assert := assert.New(test)
			handler, engine := newTestHandler(test)

			req := httptest.NewRequest(
				http.MethodPost, "/widgets", strings.NewReader(thisCase.body),
			)
			if thisCase.contentType != "" {
				req.Header.Set("Content-Type", thisCase.contentType)
			}

			recorder := serve(handler, req)
			assert.Equal(http.StatusBadRequest, recorder.Code)

			spanError, _, err := spanerrors.ErrorFromHeaders(
				recorder.Header(), engine, errorIndex(),
			)
			assert.NoError(err)
			assert.Equal(thisCase.message, spanError.Message)
		})
	}
}

func TestConfigurationFlagsOverrideFile(test *testing.T) {
	assert := assert.New(test)

	path := filepath.Join(test.TempDir(), "spandemo.toml")
	err := os.WriteFile(
		path,
		[]byte("[server]\nlisten = \":9000\"\n\n[log]\nlevel = \"debug\"\n"),
		0o600,
	)
	require.NoError(test, err)

	cli := &CLI{Config: path, LogFormat: config.FormatJSON, Sniff: true}
	cfg, err := cli.Configuration()
	assert.NoError(err)
	assert.Equal(":9000", cfg.Server.Listen)
	assert.Equal("debug", cfg.Log.Level)
	assert.Equal(config.FormatJSON, cfg.Log.Format)
	assert.True(cfg.Encoding.Sniff)

	cli = &CLI{LogLevel: "loud"}
	_, err = cli.Configuration()
	assert.Error(err)
}
