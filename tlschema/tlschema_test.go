package tlschema

import (
	"strings"
	"testing"
)

const sampleSchema = `
// LAYER 23
---types---

boolTrue#997275b5 = Bool;
boolFalse#bc799737 = Bool;

userStatusEmpty#09d05049 = UserStatus;
userStatusOnline#edb93949 expires:int = UserStatus;

peerUser#9db1bc6d user_id:int = Peer;

---functions---

ping#7abe77ec ping_id:long = Pong;
`

func TestLexAndParseSampleSchema(t *testing.T) {
	tokens, err := Lex(sampleSchema)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	items, layer, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if layer != 23 {
		t.Fatalf("layer = %d, want 23", layer)
	}
	if len(items) != 6 {
		t.Fatalf("got %d items, want 6", len(items))
	}

	var pingItem *Item
	for i := range items {
		if items[i].Name == "ping" {
			pingItem = &items[i]
		}
	}
	if pingItem == nil {
		t.Fatal("ping constructor not found")
	}
	if pingItem.Section != SectionFunctions {
		t.Fatal("ping should be in the functions section")
	}
	if pingItem.HexID != 0x7abe77ec {
		t.Fatalf("ping hex id = %#x, want 0x7abe77ec", pingItem.HexID)
	}
	if len(pingItem.Fields) != 1 || pingItem.Fields[0].Name != "ping_id" {
		t.Fatalf("unexpected ping fields: %+v", pingItem.Fields)
	}
}

func TestAnalyzeDetectsDynamicOutputs(t *testing.T) {
	tokens, _ := Lex(sampleSchema)
	items, _, err := Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	analysis, err := Analyze(items)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.OutputKind["Bool"] != KindDynamic {
		t.Fatalf("Bool should be Dynamic (two constructors), got %v", analysis.OutputKind["Bool"])
	}
	if analysis.OutputKind["UserStatus"] != KindDynamic {
		t.Fatalf("UserStatus should be Dynamic (two constructors), got %v", analysis.OutputKind["UserStatus"])
	}
	if analysis.OutputKind["Peer"] == KindDynamic {
		t.Fatal("Peer has a single constructor and should not be Dynamic")
	}
}

func TestGenerateProducesRegisterAll(t *testing.T) {
	tokens, _ := Lex(sampleSchema)
	items, _, err := Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	analysis, err := Analyze(items)
	if err != nil {
		t.Fatal(err)
	}
	src, err := Generate("gen", items, analysis)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(src, "package gen") {
		t.Fatal("generated source missing package clause")
	}
	if !strings.Contains(src, "func RegisterAll(reg *tl.Registry) {") {
		t.Fatal("generated source missing RegisterAll")
	}
	if !strings.Contains(src, "idPeerUser") {
		t.Fatal("generated source missing peerUser constructor id")
	}
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	tokens, err := Lex("foo#00000001 x:int = Foo\n")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Parse(tokens); err == nil {
		t.Fatal("expected parse error for missing semicolon")
	}
}

func TestLexRejectsMalformedHexID(t *testing.T) {
	// "g" is not a hex digit, so the '#' is immediately followed by a
	// non-hex character and Lex should reject it as an empty hex id.
	_, err := Lex("foo#g1 x:int = Foo;\n")
	if err == nil {
		t.Fatal("expected lex error for malformed hex id")
	}
}

func TestSelfReferentialFixupKeepsDynamicKind(t *testing.T) {
	schema := `
---types---
pageBlockUnsupported#13567e8d = PageBlock;
pageBlockAnchor#ce0d37d0 name:string = PageBlock;
pageBlockList#e4e88011 items:Vector<string> = PageBlock;
`
	tokens, err := Lex(schema)
	if err != nil {
		t.Fatal(err)
	}
	items, _, err := Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	analysis, err := Analyze(items)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.OutputKind["PageBlock"] != KindDynamic {
		t.Fatalf("PageBlock has 3 constructors and should be Dynamic, got %v", analysis.OutputKind["PageBlock"])
	}
}

// TestGenerateNestedEntityFields checks that a field referencing
// another entity actually emits decode/encode code, not just a
// comment: a Dynamic-kind reference (Peer) becomes a tl.Object field
// dispatched through the registry, and a single-constructor reference
// (GeoPoint) becomes a concrete pointer field asserted out of the
// registry's result.
func TestGenerateNestedEntityFields(t *testing.T) {
	schema := `
---types---
peerUser#9db1bc6d user_id:int = Peer;
peerChat#bad0e5bb chat_id:int = Peer;
geoPoint#2049d70c lat:double long:double = GeoPoint;
message#c09be45f from_id:Peer location:GeoPoint = Message;
`
	tokens, err := Lex(schema)
	if err != nil {
		t.Fatal(err)
	}
	items, _, err := Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	analysis, err := Analyze(items)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.OutputKind["Peer"] != KindDynamic {
		t.Fatalf("Peer should be Dynamic, got %v", analysis.OutputKind["Peer"])
	}
	if analysis.OutputKind["GeoPoint"] == KindDynamic {
		t.Fatal("GeoPoint has a single constructor and should not be Dynamic")
	}

	src, err := Generate("gen", items, analysis)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(src, "// field from_id") || strings.Contains(src, "// field location") {
		t.Fatal("nested-entity fields should emit real decode/encode code, not a placeholder comment")
	}
	if !strings.Contains(src, "FromId tl.Object") {
		t.Fatal("Dynamic-kind field FromId should be typed tl.Object")
	}
	if !strings.Contains(src, "Location *GeoPoint") {
		t.Fatal("single-constructor field Location should be typed *GeoPoint")
	}
	if !strings.Contains(src, "reg.Decode(r)") {
		t.Fatal("nested-entity decode should dispatch through the registry")
	}
	if !strings.Contains(src, "func unmarshalMessage(r *tl.Reader, reg *tl.Registry)") {
		t.Fatal("unmarshalMessage should take the registry as a parameter")
	}
}
