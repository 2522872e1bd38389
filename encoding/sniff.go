package encoding

import (
	"bytes"
	"io"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

func recoveredErr(action string, recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return xerrors.Errorf("panic during %v: %w", action, err)
	}
	return xerrors.Errorf("panic during %v: %v", action, recovered)
}

func (engine *SpanEngine) safeEncode(
	encoder Encoder, writer io.Writer, content interface{},
) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = recoveredErr("encode", recovered)
		}
	}()
	return encoder.Encode(engine.passed(), writer, content)
}

func (engine *SpanEngine) safeDecode(
	decoder Decoder, reader io.Reader, contentReceiver interface{},
) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = recoveredErr("decode", recovered)
		}
	}()
	return decoder.Decode(engine.passed(), reader, contentReceiver)
}

// Tries every decoder in registration order. The error lists each decoder's failure
// under its mimetype.
func (engine *SpanEngine) sniffContent(contentReceiver interface{}, reader io.Reader) error {
	content, err := io.ReadAll(reader)
	if err != nil {
		return xerrors.Errorf("error reading contentBytes: %w", err)
	}

	var failures *multierror.Error
	for _, mimeType := range engine.decoderTypes {
		err := engine.safeDecode(
			engine.decoders[mimeType], bytes.NewReader(content), contentReceiver,
		)
		if err == nil {
			return nil
		}
		failures = multierror.Append(failures, xerrors.Errorf("%v: %w", mimeType, err))
	}

	if failures == nil {
		return xerrors.New("no decoders registered to sniff content with")
	}
	return failures
}

// Strings travel as text when no mimetype is given. Everything else is written as
// JSON.
func encodeMimeType(mimeType mimetype.MimeType, content interface{}) mimetype.MimeType {
	if mimeType != mimetype.UNKNOWN {
		return mimeType
	}
	switch content.(type) {
	case string, *string:
		return mimetype.TEXT
	}
	return mimetype.JSON
}

// A string receiver reads text when no mimetype is given. Any other receiver stays
// UNKNOWN so it can be sniffed.
func decodeMimeType(mimeType mimetype.MimeType, contentReceiver interface{}) mimetype.MimeType {
	if mimeType != mimetype.UNKNOWN {
		return mimeType
	}
	if _, isString := contentReceiver.(*string); isString {
		return mimetype.TEXT
	}
	return mimetype.UNKNOWN
}
