package encoding

import (
	"github.com/rs/zerolog/log"

	"github.com/illuscio-dev/spanenvelope-go/mimetype"
)

// RegisterWriter adds writer for argument. FindWriter tries writers for the same
// argument in the order they were added.
func (engine *SpanEngine) RegisterWriter(argument Argument, writer BodyWriter) {
	key := argument.Key()

	engine.writersLock.Lock()
	engine.writers[key] = append(engine.writers[key], writer)
	count := len(engine.writers[key])
	engine.writersLock.Unlock()

	log.Debug().Str("argument", key).Int("writers", count).Msg("registered body writer")
}

/*
RegisterType registers engine-backed writers for tag and for a list of tag. With
mimeTypes the writers are limited to those; without, they write any mimetype the
engine has an encoder for at the time of the write.
*/
func (engine *SpanEngine) RegisterType(tag TypeTag, mimeTypes ...mimetype.MimeType) {
	writer := &engineWriter{engine: engine, mimeTypes: mimeTypes}

	element := ArgumentOf(tag)
	engine.RegisterWriter(element, writer)
	engine.RegisterWriter(ListOf(element), writer)
}

// FindWriter implements WriterRegistry. Writers are tried in registration order, and
// each writer against every accepted mimetype before the next writer.
func (engine *SpanEngine) FindWriter(
	argument Argument, accepted []mimetype.MimeType,
) (BodyWriter, bool) {
	engine.writersLock.RLock()
	defer engine.writersLock.RUnlock()

	for _, writer := range engine.writers[argument.Key()] {
		for _, mimeType := range accepted {
			if writer.IsWriteable(argument, mimeType) {
				return writer, true
			}
		}
	}
	return nil, false
}
