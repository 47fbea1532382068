package tlschema

// Section distinguishes the two top-level schema sections (spec §4.1
// Schema generator, §6 grammar).
type Section int

const (
	SectionTypes Section = iota
	SectionFunctions
)

// TypeRef names a field's type, with an optional single generic
// parameter for `Vector<T>`-style instantiations (spec §4.1 "generics").
type TypeRef struct {
	Name    string
	Generic *TypeRef
}

func (t TypeRef) String() string {
	if t.Generic == nil {
		return t.Name
	}
	return t.Name + "<" + t.Generic.String() + ">"
}

// Field is one member of a constructor: either a plain `name:Type`, or
// an inline conditional flag field `name:flags.N?Type` (spec §4.1
// "inline flag fields").
type Field struct {
	Name       string
	Type       TypeRef
	FlagsField string // non-empty when this field is conditional
	FlagsBit   int
}

// Item is one parsed constructor production:
// name#HEX {type_param:Type} field:Type ... = OutputType;
type Item struct {
	Name       string
	HexID      uint32
	TypeParams []Field
	Fields     []Field
	OutputType TypeRef
	Section    Section
	Line       int
}
