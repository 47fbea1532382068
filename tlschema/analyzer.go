package tlschema

// Kind is the derived trait-selection category for a constructor or
// output type (spec §4.1 "derived trait selection": Copyable |
// NonCopyable | NeedsBox | Unit | Dynamic).
type Kind int

const (
	KindCopyable Kind = iota
	KindNonCopyable
	KindNeedsBox
	KindUnit
	KindDynamic
)

func (k Kind) String() string {
	switch k {
	case KindCopyable:
		return "Copyable"
	case KindNonCopyable:
		return "NonCopyable"
	case KindNeedsBox:
		return "NeedsBox"
	case KindUnit:
		return "Unit"
	case KindDynamic:
		return "Dynamic"
	default:
		return "Unknown"
	}
}

// selfReferentialFixups names the (type, field) edges that must be
// forced to pointer indirection because the type is cyclic (spec §4.1
// "two-recursion fix-up", §9 Design notes: PageBlock, RichText).
var selfReferentialFixups = map[string]map[string]bool{
	"PageBlock": {"blocks": true},
	"RichText":  {"text": true, "texts": true},
}

// Analysis is the result of analyzing a parsed schema: each output
// type's derived Kind, and the constructor dependency DAG used to
// order code generation.
type Analysis struct {
	OutputKind map[string]Kind
	DependsOn  map[string][]string // output type name -> output types its fields reference
	Fixups     map[string]map[string]bool
}

// primitiveOutputs are the built-in TL types the codec already knows
// how to (de)serialize without a generated entity (spec §4.1 Wire
// rules); they terminate the dependency walk.
var primitiveOutputs = map[string]bool{
	"int": true, "long": true, "double": true, "string": true,
	"bytes": true, "int128": true, "int256": true, "Bool": true,
	"true": true, "Vector": true,
}

// Analyze builds the dependency DAG between output types and
// propagates the Dynamic kind outward from polymorphic roots: any
// output type with more than one constructor is Dynamic (callers must
// dispatch through the registry), and any type that embeds a Dynamic
// field, directly or transitively, is itself NeedsBox unless the
// schema's fix-up list already forces that field to a pointer (spec
// §4.1 "propagate a dynamic typeck kind from polymorphic roots to
// ancestors", §9 cyclic types).
func Analyze(items []Item) (*Analysis, error) {
	constructorsByOutput := make(map[string][]Item)
	for _, item := range items {
		constructorsByOutput[item.OutputType.Name] = append(constructorsByOutput[item.OutputType.Name], item)
	}

	a := &Analysis{
		OutputKind: make(map[string]Kind),
		DependsOn:  make(map[string][]string),
		Fixups:     selfReferentialFixups,
	}

	for outputName, ctors := range constructorsByOutput {
		switch {
		case len(ctors) > 1:
			a.OutputKind[outputName] = KindDynamic
		case len(ctors) == 1 && len(ctors[0].Fields) == 0:
			a.OutputKind[outputName] = KindUnit
		default:
			a.OutputKind[outputName] = KindCopyable
		}

		deps := map[string]bool{}
		for _, ctor := range ctors {
			for _, f := range ctor.Fields {
				name := f.Type.Name
				if f.Type.Generic != nil {
					name = f.Type.Generic.Name
				}
				if primitiveOutputs[name] || name == "" {
					continue
				}
				deps[name] = true
			}
		}
		for name := range deps {
			a.DependsOn[outputName] = append(a.DependsOn[outputName], name)
		}
	}

	if err := propagateNeedsBox(a, constructorsByOutput); err != nil {
		return nil, err
	}
	return a, nil
}

// propagateNeedsBox walks the dependency graph to a fixed point,
// promoting any Copyable output that transitively embeds a Dynamic
// field (without an intervening fix-up) to NeedsBox — the generated
// Go field becomes a pointer so the struct's size doesn't depend on
// the variant it happens to hold.
func propagateNeedsBox(a *Analysis, byOutput map[string][]Item) error {
	changed := true
	for changed {
		changed = false
		for outputName, ctors := range byOutput {
			if a.OutputKind[outputName] == KindDynamic {
				continue
			}
			for _, ctor := range ctors {
				for _, f := range ctor.Fields {
					depName := f.Type.Name
					if f.Type.Generic != nil {
						depName = f.Type.Generic.Name
					}
					if primitiveOutputs[depName] {
						continue
					}
					if a.Fixups[outputName][f.Name] {
						continue
					}
					depKind := a.OutputKind[depName]
					if (depKind == KindDynamic || depKind == KindNeedsBox) && a.OutputKind[outputName] != KindNeedsBox {
						a.OutputKind[outputName] = KindNeedsBox
						changed = true
					}
				}
			}
		}
	}
	for name, fields := range selfReferentialFixups {
		if len(fields) > 0 {
			if _, ok := a.OutputKind[name]; !ok {
				continue
			}
			if a.OutputKind[name] != KindDynamic {
				a.OutputKind[name] = KindNeedsBox
			}
		}
	}
	return nil
}

// CheckTypeParamArity verifies that every field of type `Vector`
// supplies its one type argument (spec §4.1 Failure modes:
// WrongTyParamsCount). `Vector<T>` is the only generic this generator
// knows; other type names are not checked.
func CheckTypeParamArity(items []Item) error {
	for _, item := range items {
		for _, f := range item.Fields {
			if f.Type.Name == "Vector" && f.Type.Generic == nil {
				return &ErrWrongTyParamsCount{Constructor: item.Name, Want: 1, Got: 0}
			}
		}
	}
	return nil
}
