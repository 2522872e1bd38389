package encoding

import (
	"encoding/hex"
	"io"
	"reflect"

	uuid "github.com/satori/go.uuid"
	"github.com/ugorji/go/codec"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/xerrors"
)

// JSONExtensionOpts pairs a codec extension with the type it handles, for
// AddJSONExtensions.
type JSONExtensionOpts struct {
	ValueType    reflect.Type
	ExtInterface codec.InterfaceExt
}

var defaultJSONExtensions = []*JSONExtensionOpts{
	{ValueType: reflect.TypeOf(primitive.Binary{}), ExtInterface: binaryJSONExt{}},
	{ValueType: reflect.TypeOf(uuid.UUID{}), ExtInterface: uuidJSONExt{}},
}

// Binary subtypes the extensions know about.
const (
	binaryGeneric = 0x0
	binaryUUIDOld = 0x3
	binaryUUID    = 0x4
)

// Writes bson binary values as uuid strings (subtypes 3 and 4) or hex strings
// (subtype 0). Reading them back is not supported.
type binaryJSONExt struct{}

func (ext binaryJSONExt) ConvertExt(value interface{}) interface{} {
	binary := value.(*primitive.Binary)

	switch binary.Subtype {
	case binaryUUIDOld, binaryUUID:
		id, err := uuid.FromBytes(binary.Data)
		if err != nil {
			panic(xerrors.Errorf("error converting bson uuid: %w", err))
		}
		return id.String()
	case binaryGeneric:
		return hex.EncodeToString(binary.Data)
	}
	panic(xerrors.New("unsupported Binary BSON format"))
}

func (ext binaryJSONExt) UpdateExt(dest interface{}, value interface{}) {
	panic(xerrors.New(
		"decoding to bson binary field not supported -- " +
			"use uuid or a hex string as intermediary",
	))
}

// Writes uuids in their canonical string form.
type uuidJSONExt struct{}

func (ext uuidJSONExt) ConvertExt(value interface{}) interface{} {
	switch id := value.(type) {
	case uuid.UUID:
		return id.String()
	case *uuid.UUID:
		return id.String()
	}
	panic(xerrors.Errorf("expected uuid, got %T", value))
}

func (ext uuidJSONExt) UpdateExt(dest interface{}, value interface{}) {
	text, ok := value.(string)
	if !ok {
		panic(xerrors.Errorf("uuid must be decoded from a string, got %T", value))
	}
	id, err := uuid.FromString(text)
	if err != nil {
		panic(xerrors.Errorf("error decoding uuid: %w", err))
	}
	*dest.(*uuid.UUID) = id
}

// Writes a raw bson document as a JSON object. Rebuilt by AddBSONCodecs so it decodes
// with the engine's current registry.
type rawJSONExt struct {
	registry *bsoncodec.Registry
}

func (ext rawJSONExt) ConvertExt(value interface{}) interface{} {
	raw := value.(bson.Raw)

	fields := make(map[string]interface{})
	if len(raw) == 0 {
		return fields
	}
	if err := bson.UnmarshalWithRegistry(ext.registry, raw, &fields); err != nil {
		panic(xerrors.Errorf("error while unmarshalling bson for encoding: %w", err))
	}
	return fields
}

func (ext rawJSONExt) UpdateExt(dest interface{}, value interface{}) {
	panic(xerrors.New("decoding to BSON raw field not supported"))
}

// jsonHandled is implemented by SpanEngine and any type that embeds it, so extended
// engines passed through SetPassedEngine still reach the shared handle.
type jsonHandled interface {
	JSONHandle() *codec.JsonHandle
}

func jsonHandleOf(engine ContentEngine) *codec.JsonHandle {
	if handled, ok := engine.(jsonHandled); ok {
		return handled.JSONHandle()
	}
	return &codec.JsonHandle{}
}

// Default JSON encoder for SpanEngine, built on the engine's codec.JsonHandle.
type jsonEncoder struct{}

func (encoder *jsonEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	return codec.NewEncoder(writer, jsonHandleOf(engine)).Encode(content)
}

func (encoder *jsonEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	return codec.NewDecoder(reader, jsonHandleOf(engine)).Decode(contentReceiver)
}
