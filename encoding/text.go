package encoding

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/xerrors"
)

// text/plain. Anything encodes through fmt.Sprint; only a *string decodes.
type textEncoder struct{}

func (handler *textEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	_, err := fmt.Fprint(writer, content)
	return err
}

func (handler *textEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	target, ok := contentReceiver.(*string)
	if !ok {
		return xerrors.New(
			"content receiver must be a string pointer to receive a string.",
		)
	}

	builder := strings.Builder{}
	if _, err := io.Copy(&builder, reader); err != nil {
		return xerrors.Errorf("error reading text: %w", err)
	}
	*target = builder.String()
	return nil
}
