package tlschema

import (
	"fmt"
	"sort"
	"strings"
)

// reservedWords are Go keywords and predeclared identifiers that could
// collide with a generated field or type name; collisions are resolved
// by suffixing an underscore (spec §4.1 "Name collisions with reserved
// words are resolved by suffixing underscores").
var reservedWords = map[string]bool{
	"type": true, "func": true, "range": true, "map": true, "chan": true,
	"interface": true, "struct": true, "var": true, "const": true,
	"import": true, "package": true, "return": true, "defer": true,
	"go": true, "select": true, "string": true, "error": true, "len": true,
}

// safeName maps a TL identifier (snake_case, optionally itself already
// CamelCase for type names) to an exported Go identifier: each
// underscore-separated part is capitalized and the underscores
// dropped, so `user_id` becomes `UserId` and `msg_id` becomes `MsgId`.
func safeName(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	exported := b.String()
	if reservedWords[exported] || reservedWords[strings.ToLower(exported)] {
		return exported + "_"
	}
	return exported
}

// Generate emits Go source for the parsed+analyzed schema: one struct
// per constructor, a ConstructorID() method satisfying tl.Object, and a
// RegisterAll(reg *tl.Registry) function that wires every constructor
// into the registry (spec §4.1 Schema generator, feature 5 —
// ConstructorId as the registry's dispatch key). Every generated
// unmarshal function takes the registry as a parameter, whether or not
// its own fields need it, so a constructor embedding a Dynamic (that
// is, genuinely polymorphic — PageBlock, RichText) field can always
// dispatch a nested decode through it, and RegisterAll can wire every
// constructor the same way regardless of which ones need that access.
func Generate(packageName string, items []Item, analysis *Analysis) (string, error) {
	var b strings.Builder

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	needsFmt := false
	for _, item := range sorted {
		for _, f := range item.Fields {
			if fieldIsEntity(f) {
				needsFmt = true
				break
			}
		}
	}

	fmt.Fprintf(&b, "// Code generated by tlschema. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", packageName)
	if needsFmt {
		fmt.Fprintf(&b, "import (\n\t\"bytes\"\n\t\"fmt\"\n\n\t\"github.com/cvsouth/mtproto-go/tl\"\n)\n\n")
	} else {
		fmt.Fprintf(&b, "import (\n\t\"bytes\"\n\n\t\"github.com/cvsouth/mtproto-go/tl\"\n)\n\n")
	}

	for _, item := range sorted {
		if err := generateConstructor(&b, item, analysis); err != nil {
			return "", err
		}
	}

	generateRegisterAll(&b, sorted)

	return b.String(), nil
}

func generateConstructor(b *strings.Builder, item Item, analysis *Analysis) error {
	typeName := safeName(item.Name)

	fmt.Fprintf(b, "// %s#%08x %s = %s;\n", item.Name, item.HexID, fieldsSignature(item.Fields), item.OutputType.String())
	fmt.Fprintf(b, "type %s struct {\n", typeName)
	for _, f := range item.Fields {
		goType, err := goFieldType(f, analysis)
		if err != nil {
			return fmt.Errorf("tlschema: %s.%s: %w", item.Name, f.Name, err)
		}
		fmt.Fprintf(b, "\t%s %s\n", safeName(f.Name), goType)
	}
	fmt.Fprintf(b, "}\n\n")

	fmt.Fprintf(b, "const id%s tl.ConstructorID = %#08x\n\n", typeName, item.HexID)

	fmt.Fprintf(b, "func (v *%s) ConstructorID() tl.ConstructorID { return id%s }\n\n", typeName, typeName)

	generateMarshal(b, typeName, item, analysis)
	generateUnmarshal(b, typeName, item, analysis)

	return nil
}

func fieldsSignature(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.FlagsField != "" {
			parts[i] = fmt.Sprintf("%s:%s.%d?%s", f.Name, f.FlagsField, f.FlagsBit, f.Type.String())
		} else {
			parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type.String())
		}
	}
	return strings.Join(parts, " ")
}

func goFieldType(f Field, analysis *Analysis) (string, error) {
	base, err := goType(f.Type, analysis)
	if err != nil {
		return "", err
	}
	if f.FlagsField != "" && f.Type.Name != "true" && !isEntityTypeName(f.Type.Name) {
		return "*" + base, nil
	}
	return base, nil
}

// goType maps a TL type reference to its Go representation. A
// reference to another generated entity becomes: tl.Object if the
// referenced output type is Dynamic (more than one constructor, so the
// wire can hold any of several concrete shapes and only a registry
// lookup at decode time can tell which); a plain value if it is Unit (a
// single zero-field constructor, so there is exactly one possible
// shape and no reason to indirect through a pointer); otherwise a
// pointer to the one concrete generated struct that can appear there
// (spec §4.1 derived trait selection).
func goType(t TypeRef, analysis *Analysis) (string, error) {
	switch t.Name {
	case "int":
		return "int32", nil
	case "long":
		return "int64", nil
	case "double":
		return "float64", nil
	case "string":
		return "string", nil
	case "bytes":
		return "[]byte", nil
	case "int128":
		return "[16]byte", nil
	case "int256":
		return "[32]byte", nil
	case "Bool":
		return "bool", nil
	case "true":
		return "struct{}", nil
	case "Vector":
		if t.Generic == nil {
			return "", fmt.Errorf("Vector used without a type argument")
		}
		elem, err := goType(*t.Generic, analysis)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	default:
		switch kindOf(t.Name, analysis) {
		case KindDynamic:
			return "tl.Object", nil
		case KindUnit:
			return safeName(t.Name), nil
		default:
			return "*" + safeName(t.Name), nil
		}
	}
}

// isEntityTypeName reports whether a TL type name refers to a
// generated entity rather than a primitive the codec already knows how
// to (de)serialize (spec §4.1 Wire rules).
func isEntityTypeName(name string) bool {
	switch name {
	case "int", "long", "double", "string", "bytes", "int128", "int256", "Bool", "true", "Vector":
		return false
	default:
		return true
	}
}

func fieldIsEntity(f Field) bool {
	if f.Type.Name == "Vector" {
		return f.Type.Generic != nil && isEntityTypeName(f.Type.Generic.Name)
	}
	return isEntityTypeName(f.Type.Name)
}

// kindOf looks up a referenced output type's derived Kind, defaulting
// to Copyable (single concrete shape, pointer field) when analysis
// carries no entry for it — a schema that references an undeclared
// type is a separate validation failure, not this generator's concern.
func kindOf(name string, analysis *Analysis) Kind {
	if analysis == nil {
		return KindCopyable
	}
	kind, ok := analysis.OutputKind[name]
	if !ok {
		return KindCopyable
	}
	return kind
}

func generateMarshal(b *strings.Builder, typeName string, item Item, analysis *Analysis) {
	fmt.Fprintf(b, "func (v *%s) MarshalTL() ([]byte, error) {\n", typeName)
	fmt.Fprintf(b, "\tvar buf bytes.Buffer\n\tw := tl.NewWriter(&buf)\n")
	fmt.Fprintf(b, "\tif err := w.WriteConstructorID(id%s); err != nil {\n\t\treturn nil, err\n\t}\n", typeName)
	for _, f := range item.Fields {
		emitFieldWrite(b, f, analysis)
	}
	fmt.Fprintf(b, "\treturn buf.Bytes(), nil\n}\n\n")
}

func emitFieldWrite(b *strings.Builder, f Field, analysis *Analysis) {
	name := "v." + safeName(f.Name)
	switch f.Type.Name {
	case "int":
		fmt.Fprintf(b, "\tif err := w.WriteInt32(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "long":
		fmt.Fprintf(b, "\tif err := w.WriteInt64(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "double":
		fmt.Fprintf(b, "\tif err := w.WriteFloat64(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "string":
		fmt.Fprintf(b, "\tif err := w.WriteString(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "bytes":
		fmt.Fprintf(b, "\tif err := w.WriteBytes(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "int128":
		fmt.Fprintf(b, "\tif err := w.WriteInt128(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "int256":
		fmt.Fprintf(b, "\tif err := w.WriteInt256(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "Bool":
		fmt.Fprintf(b, "\tif err := w.WriteBool(%s); err != nil {\n\t\treturn nil, err\n\t}\n", name)
	case "true":
		fmt.Fprintf(b, "\tif err := w.WriteTrue(); err != nil {\n\t\treturn nil, err\n\t}\n")
	case "Vector":
		emitVectorWrite(b, name, f, analysis)
	default:
		emitEntityWrite(b, name, f.Name, f.Type.Name, analysis)
	}
}

// emitEntityWrite writes a single nested-entity field. Dynamic fields
// hold a tl.Object that may be any registered constructor, so the
// write side recovers a marshaler through an inline interface
// assertion; Unit fields are plain values with their own MarshalTL;
// everything else is a required pointer to a concrete generated type.
func emitEntityWrite(b *strings.Builder, name, fieldName, typeName string, analysis *Analysis) {
	switch kindOf(typeName, analysis) {
	case KindDynamic:
		fmt.Fprintf(b, "\tif %s == nil {\n\t\treturn nil, fmt.Errorf(\"tlschema: field %s is required\")\n\t}\n", name, safeName(fieldName))
		fmt.Fprintf(b, "\t{\n\t\tm, ok := %s.(interface{ MarshalTL() ([]byte, error) })\n\t\tif !ok {\n\t\t\treturn nil, fmt.Errorf(\"tlschema: field %s: %%T has no MarshalTL\", %s)\n\t\t}\n", name, safeName(fieldName), name)
		fmt.Fprintf(b, "\t\tnested, err := m.MarshalTL()\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t\tif _, err := w.Write(nested); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n")
	case KindUnit:
		fmt.Fprintf(b, "\t{\n\t\tnested, err := (&%s).MarshalTL()\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t\tif _, err := w.Write(nested); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n", name)
	default:
		fmt.Fprintf(b, "\tif %s == nil {\n\t\treturn nil, fmt.Errorf(\"tlschema: field %s is required\")\n\t}\n", name, safeName(fieldName))
		fmt.Fprintf(b, "\t{\n\t\tnested, err := %s.MarshalTL()\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t\tif _, err := w.Write(nested); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n", name)
	}
}

func emitVectorWrite(b *strings.Builder, name string, f Field, analysis *Analysis) {
	if elemWrite, ok := vectorElementWriter(f.Type.Generic); ok {
		fmt.Fprintf(b, "\tif err := tl.WriteBoxedVector(w, %s, %s); err != nil {\n\t\treturn nil, err\n\t}\n", name, elemWrite)
		return
	}
	if f.Type.Generic == nil || !isEntityTypeName(f.Type.Generic.Name) {
		fmt.Fprintf(b, "\t// field %s: vector element type is not supported by this generator\n", f.Name)
		return
	}
	elemName := f.Type.Generic.Name
	switch kindOf(elemName, analysis) {
	case KindDynamic:
		fmt.Fprintf(b, "\t{\n\t\tencode := func(w *tl.Writer, item tl.Object) error {\n")
		fmt.Fprintf(b, "\t\t\tm, ok := item.(interface{ MarshalTL() ([]byte, error) })\n\t\t\tif !ok {\n\t\t\t\treturn fmt.Errorf(\"tlschema: field %s: %%T has no MarshalTL\", item)\n\t\t\t}\n", f.Name)
		fmt.Fprintf(b, "\t\t\tnested, err := m.MarshalTL()\n\t\t\tif err != nil {\n\t\t\t\treturn err\n\t\t\t}\n\t\t\t_, err = w.Write(nested)\n\t\t\treturn err\n\t\t}\n")
		fmt.Fprintf(b, "\t\tif err := tl.WriteBoxedVector(w, %s, encode); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n", name)
	case KindUnit:
		elemType := safeName(elemName)
		fmt.Fprintf(b, "\t{\n\t\tencode := func(w *tl.Writer, item %s) error {\n", elemType)
		fmt.Fprintf(b, "\t\t\tnested, err := (&item).MarshalTL()\n\t\t\tif err != nil {\n\t\t\t\treturn err\n\t\t\t}\n\t\t\t_, err = w.Write(nested)\n\t\t\treturn err\n\t\t}\n")
		fmt.Fprintf(b, "\t\tif err := tl.WriteBoxedVector(w, %s, encode); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n", name)
	default:
		elemType := "*" + safeName(elemName)
		fmt.Fprintf(b, "\t{\n\t\tencode := func(w *tl.Writer, item %s) error {\n", elemType)
		fmt.Fprintf(b, "\t\t\tnested, err := item.MarshalTL()\n\t\t\tif err != nil {\n\t\t\t\treturn err\n\t\t\t}\n\t\t\t_, err = w.Write(nested)\n\t\t\treturn err\n\t\t}\n")
		fmt.Fprintf(b, "\t\tif err := tl.WriteBoxedVector(w, %s, encode); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n", name)
	}
}

func generateUnmarshal(b *strings.Builder, typeName string, item Item, analysis *Analysis) {
	fmt.Fprintf(b, "func unmarshal%s(r *tl.Reader, reg *tl.Registry) (tl.Object, error) {\n", typeName)
	fmt.Fprintf(b, "\tv := &%s{}\n", typeName)
	if itemUsesOuterErr(item) {
		fmt.Fprintf(b, "\tvar err error\n")
	}
	for _, f := range item.Fields {
		emitFieldRead(b, f, analysis)
	}
	fmt.Fprintf(b, "\treturn v, nil\n}\n\n")
}

// itemUsesOuterErr reports whether generateUnmarshal's body will
// reference the function-level err variable at least once. A
// zero-field constructor, or one whose only field is a vector of an
// element type this generator does not support, never touches it —
// declaring it unconditionally would leave it unused and the generated
// file would fail to compile.
func itemUsesOuterErr(item Item) bool {
	for _, f := range item.Fields {
		if fieldUsesOuterErr(f) {
			return true
		}
	}
	return false
}

func fieldUsesOuterErr(f Field) bool {
	if f.Type.Name != "Vector" {
		return true
	}
	if f.Type.Generic == nil {
		return false
	}
	if _, ok := vectorElementReader(f.Type.Generic); ok {
		return true
	}
	return isEntityTypeName(f.Type.Generic.Name)
}

func emitFieldRead(b *strings.Builder, f Field, analysis *Analysis) {
	dst := "v." + safeName(f.Name)
	switch f.Type.Name {
	case "int":
		fmt.Fprintf(b, "\tif %s, err = r.ReadInt32(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "long":
		fmt.Fprintf(b, "\tif %s, err = r.ReadInt64(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "double":
		fmt.Fprintf(b, "\tif %s, err = r.ReadFloat64(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "string":
		fmt.Fprintf(b, "\tif %s, err = r.ReadString(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "bytes":
		fmt.Fprintf(b, "\tif %s, err = r.ReadBytes(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "int128":
		fmt.Fprintf(b, "\tif %s, err = r.ReadInt128(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "int256":
		fmt.Fprintf(b, "\tif %s, err = r.ReadInt256(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "Bool":
		fmt.Fprintf(b, "\tif %s, err = r.ReadBool(); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case "true":
		fmt.Fprintf(b, "\tif err = r.ReadTrue(); err != nil {\n\t\treturn nil, err\n\t}\n")
	case "Vector":
		emitVectorRead(b, dst, f, analysis)
	default:
		emitEntityRead(b, dst, f.Name, f.Type.Name, analysis)
	}
}

// emitEntityRead decodes a single nested-entity field by dispatching
// through the registry, which consumes and validates the field's own
// boxed constructor id (every TL entity is written boxed, including
// single-constructor and Unit outputs). Dynamic fields keep the
// returned tl.Object as-is; everything else asserts it to the one
// concrete type that can appear there.
func emitEntityRead(b *strings.Builder, dst, fieldName, typeName string, analysis *Analysis) {
	switch kindOf(typeName, analysis) {
	case KindDynamic:
		fmt.Fprintf(b, "\tif %s, err = reg.Decode(r); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case KindUnit:
		elemType := safeName(typeName)
		fmt.Fprintf(b, "\t{\n\t\tvar obj tl.Object\n\t\tobj, err = reg.Decode(r)\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n")
		fmt.Fprintf(b, "\t\ttyped, ok := obj.(*%s)\n\t\tif !ok {\n\t\t\treturn nil, fmt.Errorf(\"tlschema: field %s: unexpected type %%T\", obj)\n\t\t}\n", elemType, fieldName)
		fmt.Fprintf(b, "\t\t%s = *typed\n\t}\n", dst)
	default:
		elemType := safeName(typeName)
		fmt.Fprintf(b, "\t{\n\t\tvar obj tl.Object\n\t\tobj, err = reg.Decode(r)\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n")
		fmt.Fprintf(b, "\t\ttyped, ok := obj.(*%s)\n\t\tif !ok {\n\t\t\treturn nil, fmt.Errorf(\"tlschema: field %s: unexpected type %%T\", obj)\n\t\t}\n", elemType, fieldName)
		fmt.Fprintf(b, "\t\t%s = typed\n\t}\n", dst)
	}
}

func emitVectorRead(b *strings.Builder, dst string, f Field, analysis *Analysis) {
	if elemRead, ok := vectorElementReader(f.Type.Generic); ok {
		fmt.Fprintf(b, "\tif %s, err = tl.ReadBoxedVector(r, %s); err != nil {\n\t\treturn nil, err\n\t}\n", dst, elemRead)
		return
	}
	if f.Type.Generic == nil || !isEntityTypeName(f.Type.Generic.Name) {
		fmt.Fprintf(b, "\t// field %s: vector element type is not supported by this generator\n", f.Name)
		return
	}
	elemName := f.Type.Generic.Name
	switch kindOf(elemName, analysis) {
	case KindDynamic:
		fmt.Fprintf(b, "\tif %s, err = tl.ReadBoxedVector(r, reg.Decode); err != nil {\n\t\treturn nil, err\n\t}\n", dst)
	case KindUnit:
		elemType := safeName(elemName)
		fmt.Fprintf(b, "\t{\n\t\tdecode := func(r *tl.Reader) (%s, error) {\n", elemType)
		fmt.Fprintf(b, "\t\t\tobj, err := reg.Decode(r)\n\t\t\tif err != nil {\n\t\t\t\treturn %s{}, err\n\t\t\t}\n", elemType)
		fmt.Fprintf(b, "\t\t\ttyped, ok := obj.(*%s)\n\t\t\tif !ok {\n\t\t\t\treturn %s{}, fmt.Errorf(\"tlschema: field %s: unexpected type %%T\", obj)\n\t\t\t}\n", elemType, elemType, f.Name)
		fmt.Fprintf(b, "\t\t\treturn *typed, nil\n\t\t}\n")
		fmt.Fprintf(b, "\t\tif %s, err = tl.ReadBoxedVector(r, decode); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n", dst)
	default:
		elemType := "*" + safeName(elemName)
		fmt.Fprintf(b, "\t{\n\t\tdecode := func(r *tl.Reader) (%s, error) {\n", elemType)
		fmt.Fprintf(b, "\t\t\tobj, err := reg.Decode(r)\n\t\t\tif err != nil {\n\t\t\t\treturn nil, err\n\t\t\t}\n")
		fmt.Fprintf(b, "\t\t\ttyped, ok := obj.(%s)\n\t\t\tif !ok {\n\t\t\t\treturn nil, fmt.Errorf(\"tlschema: field %s: unexpected type %%T\", obj)\n\t\t\t}\n", elemType, f.Name)
		fmt.Fprintf(b, "\t\t\treturn typed, nil\n\t\t}\n")
		fmt.Fprintf(b, "\t\tif %s, err = tl.ReadBoxedVector(r, decode); err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t}\n", dst)
	}
}

// vectorElementWriter returns the inline closure expression used to
// write one element of a Vector<T> field, for the primitive T this
// generator supports inline; ok is false for element types that need
// a nested entity's own MarshalTL, which emitVectorWrite handles with
// a dedicated registry-aware code path instead.
func vectorElementWriter(elem *TypeRef) (string, bool) {
	if elem == nil {
		return "", false
	}
	switch elem.Name {
	case "int":
		return "func(w *tl.Writer, x int32) error { return w.WriteInt32(x) }", true
	case "long":
		return "func(w *tl.Writer, x int64) error { return w.WriteInt64(x) }", true
	case "string":
		return "func(w *tl.Writer, x string) error { return w.WriteString(x) }", true
	case "bytes":
		return "func(w *tl.Writer, x []byte) error { return w.WriteBytes(x) }", true
	default:
		return "", false
	}
}

func vectorElementReader(elem *TypeRef) (string, bool) {
	if elem == nil {
		return "", false
	}
	switch elem.Name {
	case "int":
		return "func(r *tl.Reader) (int32, error) { return r.ReadInt32() }", true
	case "long":
		return "func(r *tl.Reader) (int64, error) { return r.ReadInt64() }", true
	case "string":
		return "func(r *tl.Reader) (string, error) { return r.ReadString() }", true
	case "bytes":
		return "func(r *tl.Reader) ([]byte, error) { return r.ReadBytes() }", true
	default:
		return "", false
	}
}

// generateRegisterAll wires every constructor into reg. Every
// unmarshal function takes reg as a parameter (see Generate), so every
// registration is the same closure shape: it lets a constructor
// decoded deep inside a nested field dispatch through the very
// registry the caller built, however many levels of nesting down.
func generateRegisterAll(b *strings.Builder, items []Item) {
	fmt.Fprintf(b, "// RegisterAll wires every constructor in this schema into reg.\n")
	fmt.Fprintf(b, "func RegisterAll(reg *tl.Registry) {\n")
	for _, item := range items {
		typeName := safeName(item.Name)
		fmt.Fprintf(b, "\treg.Register(id%s, func(r *tl.Reader) (tl.Object, error) { return unmarshal%s(r, reg) })\n", typeName, typeName)
	}
	fmt.Fprintf(b, "}\n")
}
