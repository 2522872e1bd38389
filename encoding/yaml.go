package encoding

import (
	"io"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// default YAML encoder for SpanEngine. Sequences are written as a single yaml
// document holding a list. Decoding is strict.
type yamlEncoder struct{}

func (encoder *yamlEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	yamlEncoder := yaml.NewEncoder(writer)
	if err := yamlEncoder.Encode(content); err != nil {
		return err
	}
	if err := yamlEncoder.Close(); err != nil {
		return xerrors.Errorf("error flushing yaml document: %w", err)
	}
	return nil
}

func (encoder *yamlEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	yamlDecoder := yaml.NewDecoder(reader)
	// Unknown keys are errors, so sniffing does not accept JSON written with
	// different field casing as a silently empty YAML document.
	yamlDecoder.SetStrict(true)
	return yamlDecoder.Decode(contentReceiver)
}
