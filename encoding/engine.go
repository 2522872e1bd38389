package encoding

import (
	"io"
	"reflect"
	"sync"

	"github.com/ugorji/go/codec"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

/*
ContentEngine encodes and decodes message bodies for any registered mimetype, so
services can read whatever a client sends and answer in whatever encoding the client
asked for.
*/
type ContentEngine interface {
	SetEncoder(mimeType mimetype.MimeType, encoder Encoder)
	SetDecoder(mimeType mimetype.MimeType, decoder Decoder)

	HandlesEncode(mimeType mimetype.MimeType) bool
	HandlesDecode(mimeType mimetype.MimeType) bool
	// Handles is true when mimeType has both an encoder and a decoder.
	Handles(mimeType mimetype.MimeType) bool

	// SniffType is true when content of an unknown mimetype is decoded by trying every
	// decoder.
	SniffType() bool

	// Decode reads content of mimeType from reader into contentReceiver. The reader is
	// closed when it is an io.ReadCloser.
	Decode(
		mimeType mimetype.MimeType,
		contentReceiver interface{},
		reader io.Reader,
	) error

	// Encode writes content as mimeType to writer.
	Encode(
		mimeType mimetype.MimeType,
		content interface{},
		writer io.Writer,
	) error
}

/*
SpanEngine is the default ContentEngine and WriterRegistry. Create one with
NewContentEngine, or embed it to extend it.

Mimetypes

Encoders and decoders are registered for application/json, application/bson,
application/yaml and text/plain, in that order.

JSON goes through github.com/ugorji/go/codec and is extended with AddJSONExtensions.
UUIDs from github.com/satori/go.uuid are written as canonical strings. BSON
primitive.Binary values are written as uuid strings (subtypes 0x3 and 0x4) or hex
strings (subtype 0x0).

BSON goes through go.mongodb.org/mongo-driver and is extended with AddBSONCodecs.
Sequences are written as documents separated by BsonListSepString.

YAML goes through gopkg.in/yaml.v2 and decodes strictly. Text is written with
fmt.Sprint.

Payload writers

RegisterType registers engine-backed writers for a TypeTag and for a list of it.
Other writers, such as response envelopes, are added with RegisterWriter. FindWriter
is safe for concurrent use; registration is expected to happen at startup.

Sniffing

When created with allowSniff, content of an UNKNOWN mimetype is decoded by trying every
decoder in registration order until one succeeds.

Panics

A panic inside an encoder or decoder is recovered and returned as an error.
*/
type SpanEngine struct {
	encoders     map[mimetype.MimeType]Encoder
	encoderTypes []mimetype.MimeType
	decoders     map[mimetype.MimeType]Decoder
	// Registration order, which is also the sniffing order.
	decoderTypes  []mimetype.MimeType
	sniffMimeType bool

	jsonHandle   *codec.JsonHandle
	bsonRegistry *bsoncodec.Registry
	// Every codec added so far, so the registry can be rebuilt.
	bsonCodecs []*BsonCodecOpts

	// Handed to encoders and decoders in place of the engine itself.
	passedEngine ContentEngine

	// Argument.Key() to writers in registration order.
	writers     map[string][]BodyWriter
	writersLock sync.RWMutex
}

// NewContentEngine returns a SpanEngine with the default encoders, decoders, JSON
// extensions and BSON codecs.
func NewContentEngine(allowSniff bool) (*SpanEngine, error) {
	engine := &SpanEngine{
		encoders:      make(map[mimetype.MimeType]Encoder),
		decoders:      make(map[mimetype.MimeType]Decoder),
		sniffMimeType: allowSniff,
		jsonHandle:    &codec.JsonHandle{},
		writers:       make(map[string][]BodyWriter),
	}

	defaults := []struct {
		mimeType mimetype.MimeType
		encoder  interface {
			Encoder
			Decoder
		}
	}{
		{mimetype.JSON, &jsonEncoder{}},
		{mimetype.BSON, &bsonEncoder{}},
		{mimetype.YAML, &yamlEncoder{}},
		// Accepts any bytes, so it must be sniffed last.
		{mimetype.TEXT, &textEncoder{}},
	}
	for _, registered := range defaults {
		engine.SetEncoder(registered.mimeType, registered.encoder)
		engine.SetDecoder(registered.mimeType, registered.encoder)
	}

	if err := engine.AddJSONExtensions(defaultJSONExtensions); err != nil {
		return nil, xerrors.Errorf("error adding default json extensions: %w", err)
	}
	if err := engine.AddBSONCodecs(defaultBsonCodecs); err != nil {
		return nil, xerrors.Errorf("error adding default bson codecs: %w", err)
	}
	return engine, nil
}

// SetPassedEngine changes the engine handed to encoders and decoders. Types that embed
// SpanEngine pass themselves so their encoders can reach their own settings.
func (engine *SpanEngine) SetPassedEngine(newEngine ContentEngine) {
	engine.passedEngine = newEngine
}

func (engine *SpanEngine) passed() ContentEngine {
	if engine.passedEngine == nil {
		return engine
	}
	return engine.passedEngine
}

func (engine *SpanEngine) SetEncoder(mimeType mimetype.MimeType, encoder Encoder) {
	if !engine.HandlesEncode(mimeType) {
		engine.encoderTypes = append(engine.encoderTypes, mimeType)
	}
	engine.encoders[mimeType] = encoder
}

func (engine *SpanEngine) SetDecoder(mimeType mimetype.MimeType, decoder Decoder) {
	if !engine.HandlesDecode(mimeType) {
		engine.decoderTypes = append(engine.decoderTypes, mimeType)
	}
	engine.decoders[mimeType] = decoder
}

func (engine *SpanEngine) SniffType() bool {
	return engine.sniffMimeType
}

func (engine *SpanEngine) HandlesEncode(mimeType mimetype.MimeType) bool {
	_, ok := engine.encoders[mimeType]
	return ok
}

func (engine *SpanEngine) HandlesDecode(mimeType mimetype.MimeType) bool {
	_, ok := engine.decoders[mimeType]
	return ok
}

func (engine *SpanEngine) Handles(mimeType mimetype.MimeType) bool {
	return engine.HandlesEncode(mimeType) && engine.HandlesDecode(mimeType)
}

// EncoderMimeTypes returns the mimetypes with an encoder, in registration order.
func (engine *SpanEngine) EncoderMimeTypes() []mimetype.MimeType {
	return append([]mimetype.MimeType(nil), engine.encoderTypes...)
}

func (engine *SpanEngine) Decode(
	mimeType mimetype.MimeType,
	contentReceiver interface{},
	reader io.Reader,
) error {
	if closer, ok := reader.(io.ReadCloser); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	mimeType = decodeMimeType(mimeType, contentReceiver)
	if mimeType == mimetype.UNKNOWN {
		if !engine.SniffType() {
			return xerrors.New("mimetype is unknown and sniffing is disabled")
		}
		return engine.sniffContent(contentReceiver, reader)
	}

	decoder, ok := engine.decoders[mimeType]
	if !ok {
		return xerrors.New("no decoder for " + string(mimeType))
	}
	if err := engine.safeDecode(decoder, reader, contentReceiver); err != nil {
		return xerrors.Errorf("decode err: %w", err)
	}
	return nil
}

func (engine *SpanEngine) Encode(
	mimeType mimetype.MimeType,
	content interface{},
	writer io.Writer,
) error {
	mimeType = encodeMimeType(mimeType, content)

	encoder, ok := engine.encoders[mimeType]
	if !ok {
		return xerrors.New("no encoder for " + string(mimeType))
	}
	if err := engine.safeEncode(encoder, writer, content); err != nil {
		return xerrors.Errorf("encode err: %w", err)
	}
	return nil
}

// JSONHandle is the handle shared by the JSON encoder and decoder.
func (engine *SpanEngine) JSONHandle() *codec.JsonHandle {
	return engine.jsonHandle
}

// BSONRegistry is the registry shared by the BSON encoder and decoder.
func (engine *SpanEngine) BSONRegistry() *bsoncodec.Registry {
	return engine.bsonRegistry
}

func (engine *SpanEngine) AddJSONExtensions(extensions []*JSONExtensionOpts) error {
	for _, extension := range extensions {
		err := engine.jsonHandle.SetInterfaceExt(
			extension.ValueType, 1, extension.ExtInterface,
		)
		if err != nil {
			return xerrors.Errorf(
				"error adding json extension to content engine: %w", err,
			)
		}
	}
	return nil
}

// AddBSONCodecs rebuilds the BSON registry with codecs added to the ones already
// registered.
func (engine *SpanEngine) AddBSONCodecs(codecs []*BsonCodecOpts) error {
	engine.bsonCodecs = append(engine.bsonCodecs, codecs...)

	builder := bsoncodec.NewRegistryBuilder()
	bsoncodec.DefaultValueEncoders{}.RegisterDefaultEncoders(builder)
	bsoncodec.DefaultValueDecoders{}.RegisterDefaultDecoders(builder)
	for _, registered := range engine.bsonCodecs {
		builder.RegisterCodec(registered.ValueType, registered.Codec)
	}
	engine.bsonRegistry = builder.Build()

	// bson.Raw values written as JSON must see the new codecs too.
	err := engine.jsonHandle.SetInterfaceExt(
		reflect.TypeOf(bson.Raw{}), 1, rawJSONExt{registry: engine.bsonRegistry},
	)
	if err != nil {
		return xerrors.Errorf("error building bson extension for json handle: %w", err)
	}
	return nil
}

var _ ContentEngine = (*SpanEngine)(nil)
var _ WriterRegistry = (*SpanEngine)(nil)
