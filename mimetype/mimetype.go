// Package mimetype names the content types an engine can encode and parses them out of
// Content-Type and Accept headers.
package mimetype

import (
	"strings"

	"github.com/samber/lo"
)

// MimeType is a content type such as JSON. Types without a constant are plain strings:
//
//	MimeType("text/csv")
type MimeType string

const (
	JSON = MimeType("application/json")
	BSON = MimeType("application/bson")
	YAML = MimeType("application/yaml")
	TEXT = MimeType("text/plain")
	// ANY is the wildcard a client sends when it will accept whatever we produce.
	ANY = MimeType("*/*")
	// UNKNOWN is a blank header.
	UNKNOWN = MimeType("")
)

// Object types are recognized by subtype suffix, so "x-json" and "json" both parse
// to JSON.
var objectSuffixes = []struct {
	suffix   string
	mimeType MimeType
}{
	{"json", JSON},
	{"bson", BSON},
	{"yaml", YAML},
}

// Satisfied by http.Header.
type headerGetter interface {
	Get(string) string
}

// FromHeader parses the Content-Type header.
func FromHeader(headers headerGetter) MimeType {
	return FromString(headers.Get("Content-Type"))
}

// FromAccept parses the first type listed in the Accept header. Quality weights are
// ignored. A missing header or a wildcard yields defaultType.
func FromAccept(headers headerGetter, defaultType MimeType) MimeType {
	first, _, _ := strings.Cut(headers.Get("Accept"), ",")

	mimeType := FromString(first)
	if mimeType == UNKNOWN || mimeType == ANY {
		return defaultType
	}
	return mimeType
}

// FromString parses a mimetype, ignoring case and parameters such as charset. Each of
// these yields JSON:
//
//	application/json
//	application/JSON
//	application/json; charset=utf-8
//	application/x-json
//	json
func FromString(incoming string) MimeType {
	essence, _, _ := strings.Cut(incoming, ";")
	essence = strings.ToLower(strings.TrimSpace(essence))

	switch essence {
	case "":
		return UNKNOWN
	case "text", string(TEXT):
		return TEXT
	}

	for _, object := range objectSuffixes {
		if strings.HasSuffix(essence, object.suffix) {
			return object.mimeType
		}
	}
	return MimeType(essence)
}

// Contains reports whether mimeType is one of mimeTypes.
func Contains(mimeTypes []MimeType, mimeType MimeType) bool {
	return lo.Contains(mimeTypes, mimeType)
}
