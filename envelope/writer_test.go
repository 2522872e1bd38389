package envelope_test

//revive:disable:import-shadowing reason: Disabled for assert := assert.New(), which is
// the preferred method of using multiple asserts in a test.

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/envelope"
	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

type Widget struct {
	Name  string
	Count int
}

var widgetArg = encoding.ArgumentOf("widget")

type headerRecord struct {
	key   string
	value string
}

// recordingHeaders keeps every added header in call order.
type recordingHeaders struct {
	added []headerRecord
}

func (headers *recordingHeaders) Add(key string, value string) {
	headers.added = append(headers.added, headerRecord{key: key, value: value})
}

// stubWriter is a payload writer with a configurable outcome.
type stubWriter struct {
	mimeTypes []mimetype.MimeType
	blocking  bool
	err       error

	calls       int
	lastArg     encoding.Argument
	lastContent interface{}
}

func (writer *stubWriter) IsWriteable(
	argument encoding.Argument, mimeType mimetype.MimeType,
) bool {
	return mimetype.Contains(writer.mimeTypes, mimeType)
}

func (writer *stubWriter) IsBlocking() bool {
	return writer.blocking
}

func (writer *stubWriter) WriteTo(
	argument encoding.Argument,
	mimeType mimetype.MimeType,
	content interface{},
	headers encoding.MutableHeaders,
	out io.Writer,
) error {
	writer.calls++
	writer.lastArg = argument
	writer.lastContent = content
	if writer.err != nil {
		return writer.err
	}
	_, err := io.WriteString(out, "payload")
	return err
}

func createEngine(test *testing.T) *encoding.SpanEngine {
	engine, err := encoding.NewContentEngine(false)
	if err != nil {
		test.Fatal(err)
	}
	return engine
}

// sentinel used to check that payload writer errors are returned unchanged.
var errPayload = xerrors.New("payload writer failed")

func TestErasedWriterContent(test *testing.T) {
	engine := createEngine(test)
	engine.RegisterType("widget")
	erased := specializePage(test, engine).Erase()

	page, err := envelope.NewPage([]Widget{{Name: "gear", Count: 4}}, 0, 5, 1)
	if err != nil {
		test.Fatal(err)
	}

	testCases := []struct {
		name    string
		content interface{}
		wantErr bool
	}{
		{"Value", page, false},
		{"Pointer", &page, false},
		{"NilPointer", (*envelope.Page[Widget])(nil), true},
		{"WrongType", "not a page", true},
		{"OtherEnvelope", envelope.NewDated(Widget{}), true},
	}

	for _, thisCase := range testCases {
		test.Run(thisCase.name, func(test *testing.T) {
			assert := assert.New(test)

			headers := &recordingHeaders{}
			body := new(bytes.Buffer)
			err := erased.WriteTo(
				envelope.PageOf(widgetArg), mimetype.JSON, thisCase.content, headers, body,
			)

			if thisCase.wantErr {
				assert.ErrorContains(err, "page<widget> writer expects")
				assert.Empty(headers.added)
				assert.Zero(body.Len())
				return
			}
			assert.NoError(err)
			assert.Len(headers.added, 4)
			assert.JSONEq(`[{"Name":"gear","Count":4}]`, body.String())
		})
	}
}

func TestErasedWriterDelegates(test *testing.T) {
	assert := assert.New(test)
	engine := createEngine(test)

	payload := &stubWriter{mimeTypes: []mimetype.MimeType{mimetype.JSON}, blocking: true}
	engine.RegisterWriter(encoding.ListOf(widgetArg), payload)

	erased := specializePage(test, engine).Erase()
	pageArg := envelope.PageOf(widgetArg)

	assert.True(erased.IsBlocking())
	assert.True(erased.IsWriteable(pageArg, mimetype.JSON))
	assert.False(erased.IsWriteable(pageArg, mimetype.YAML))

	page, err := envelope.NewPage([]Widget{{Name: "cog"}}, 0, 5, 1)
	if err != nil {
		test.Fatal(err)
	}

	err = erased.WriteTo(
		pageArg, mimetype.JSON, &page, &recordingHeaders{}, new(bytes.Buffer),
	)
	assert.NoError(err)
	assert.Equal(1, payload.calls)
	assert.Equal(encoding.ListOf(widgetArg), payload.lastArg)
	assert.Equal([]Widget{{Name: "cog"}}, payload.lastContent)
}
