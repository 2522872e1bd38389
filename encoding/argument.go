package encoding

import (
	"strings"
)

// TypeTag names a payload type. Tags are chosen by the application when a type is
// registered and are how writers are looked up, in place of runtime reflection.
type TypeTag string

// ListTag is the tag of the generic list argument built by ListOf.
const ListTag TypeTag = "list"

/*
Argument describes a possibly generic payload type: a tag plus the arguments of its
type parameters. A page of widgets is described as

	ArgumentOf("page", ArgumentOf("widget"))

and its canonical Key() is "page<widget>".
*/
type Argument struct {
	Tag        TypeTag
	Parameters []Argument
}

// ArgumentOf returns an argument for tag with the given type parameters.
func ArgumentOf(tag TypeTag, parameters ...Argument) Argument {
	return Argument{Tag: tag, Parameters: parameters}
}

// ListOf returns the argument for a list of element.
func ListOf(element Argument) Argument {
	return ArgumentOf(ListTag, element)
}

// TypeParameter returns the type parameter at index, if present.
func (argument Argument) TypeParameter(index int) (Argument, bool) {
	if index < 0 || index >= len(argument.Parameters) {
		return Argument{}, false
	}
	return argument.Parameters[index], true
}

// Key is the canonical string form of the argument, used as the registry key.
func (argument Argument) Key() string {
	builder := strings.Builder{}
	argument.writeKey(&builder)
	return builder.String()
}

func (argument Argument) writeKey(builder *strings.Builder) {
	builder.WriteString(string(argument.Tag))
	if len(argument.Parameters) == 0 {
		return
	}

	builder.WriteByte('<')
	for index, parameter := range argument.Parameters {
		if index > 0 {
			builder.WriteByte(',')
		}
		parameter.writeKey(builder)
	}
	builder.WriteByte('>')
}

func (argument Argument) String() string {
	return argument.Key()
}
