package encoding

import (
	"io"
)

// Encoder writes content in one mimetype. The calling engine is passed in so encoders
// can reach engine-level settings such as the JSON handle.
type Encoder interface {
	Encode(engine ContentEngine, writer io.Writer, content interface{}) error
}

// Decoder reads one mimetype into contentReceiver, which is usually a pointer.
type Decoder interface {
	Decode(engine ContentEngine, reader io.Reader, contentReceiver interface{}) error
}
