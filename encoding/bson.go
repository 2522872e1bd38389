package encoding

import (
	"bufio"
	"bytes"
	"io"
	"reflect"

	uuid "github.com/satori/go.uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"golang.org/x/xerrors"
)

// BsonListSepString separates the documents of a top-level list, such as the items of
// a page, since a bson payload is otherwise a single document. It is U+241E SYMBOL
// FOR RECORD SEPARATOR.
const BsonListSepString = "\u241E"

// BsonListSepBytes is BsonListSepString as bytes.
var BsonListSepBytes = []byte(BsonListSepString)

// Largest document a bson server accepts.
const maxBsonDocumentSize = 16 * 1024 * 1024

// BsonCodecOpts pairs a codec with the type it handles, for AddBSONCodecs.
type BsonCodecOpts struct {
	ValueType reflect.Type
	Codec     bsoncodec.ValueCodec
}

var defaultBsonCodecs = []*BsonCodecOpts{
	{ValueType: reflect.TypeOf(uuid.UUID{}), Codec: uuidBSONCodec{}},
}

// Stores uuids as binary subtype 3.
type uuidBSONCodec struct{}

func (codec uuidBSONCodec) EncodeValue(
	_ bsoncodec.EncodeContext, valueWriter bsonrw.ValueWriter, value reflect.Value,
) error {
	id, ok := value.Interface().(uuid.UUID)
	if !ok {
		return xerrors.Errorf("expected uuid.UUID, got %v", value.Type())
	}
	return valueWriter.WriteBinaryWithSubtype(id.Bytes(), 0x3)
}

func (codec uuidBSONCodec) DecodeValue(
	_ bsoncodec.DecodeContext, valueReader bsonrw.ValueReader, value reflect.Value,
) error {
	data, _, err := valueReader.ReadBinary()
	if err != nil {
		return err
	}

	id, err := uuid.FromBytes(data)
	if err != nil {
		return err
	}
	value.Set(reflect.ValueOf(id))
	return nil
}

// bsonRegistered is implemented by SpanEngine and by any type embedding it.
type bsonRegistered interface {
	BSONRegistry() *bsoncodec.Registry
}

func bsonRegistryOf(engine ContentEngine) (*bsoncodec.Registry, error) {
	if registered, ok := engine.(bsonRegistered); ok && registered.BSONRegistry() != nil {
		return registered.BSONRegistry(), nil
	}
	return nil, xerrors.New("engine does not expose a bson registry")
}

// Splits a payload on BsonListSepBytes for bufio.Scanner.
func scanBsonDocuments(data []byte, atEOF bool) (int, []byte, error) {
	if document, _, found := bytes.Cut(data, BsonListSepBytes); found {
		return len(document) + len(BsonListSepBytes), document, nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	// Need more data, or nothing is left.
	return 0, nil, nil
}

func isSequence(value reflect.Value) bool {
	kind := value.Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

// Default BSON encoder for SpanEngine. Sequences other than a bson.Raw document are
// written as documents joined by BsonListSepBytes.
type bsonEncoder struct{}

func (encoder *bsonEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	registry, err := bsonRegistryOf(engine)
	if err != nil {
		return err
	}

	if raw, isRaw := content.(*bson.Raw); isRaw {
		_, err := writer.Write(*raw)
		return err
	}

	value := reflect.Indirect(reflect.ValueOf(content))
	if !isSequence(value) {
		return writeBsonDocument(registry, writer, content)
	}

	for index := 0; index < value.Len(); index++ {
		if index > 0 {
			if _, err := writer.Write(BsonListSepBytes); err != nil {
				return xerrors.Errorf("error writing document separator: %w", err)
			}
		}
		if err := writeBsonDocument(registry, writer, value.Index(index).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func writeBsonDocument(
	registry *bsoncodec.Registry, writer io.Writer, document interface{},
) error {
	if raw, isRaw := document.(*bson.Raw); isRaw {
		_, err := writer.Write(*raw)
		return err
	}

	data, err := bson.MarshalWithRegistry(registry, document)
	if err != nil {
		return err
	}
	_, err = writer.Write(data)
	return err
}

func (encoder *bsonEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	registry, err := bsonRegistryOf(engine)
	if err != nil {
		return err
	}

	if raw, isRaw := contentReceiver.(*bson.Raw); isRaw {
		document, err := bson.NewFromIOReader(reader)
		if err != nil {
			return err
		}
		*raw = document
		return nil
	}

	if !isSequence(reflect.Indirect(reflect.ValueOf(contentReceiver))) {
		return readBsonDocument(registry, reader, contentReceiver)
	}

	target := reflect.ValueOf(contentReceiver)
	if target.Kind() != reflect.Ptr {
		return xerrors.New("slice receiver must be pointer")
	}
	slice := target.Elem()
	elementType := slice.Type().Elem()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(nil, maxBsonDocumentSize)
	scanner.Split(scanBsonDocuments)
	for scanner.Scan() {
		element := reflect.New(elementType)
		err := readBsonDocument(registry, bytes.NewReader(scanner.Bytes()), element.Interface())
		if err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, element.Elem()))
	}
	return scanner.Err()
}

func readBsonDocument(
	registry *bsoncodec.Registry, reader io.Reader, receiver interface{},
) error {
	document, err := bson.NewFromIOReader(reader)
	if err != nil {
		return err
	}
	return bson.UnmarshalWithRegistry(registry, document, receiver)
}
