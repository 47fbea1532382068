package tlschema

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrWrongTyParamsCount is returned by CheckTypeParamArity when a
// constructor's field uses a generic type with the wrong number of type
// arguments (spec §4.1 Failure modes).
type ErrWrongTyParamsCount struct {
	Constructor string
	Want, Got   int
}

func (e *ErrWrongTyParamsCount) Error() string {
	return fmt.Sprintf("tlschema: %s: expected %d type parameters, got %d", e.Constructor, e.Want, e.Got)
}

type parser struct {
	tokens  []Token
	pos     int
	section Section
	layer   int
}

// Parse partitions tokens into items, tracking which of the two
// top-level sections (`---types---` / `---functions---`) each
// constructor belongs to, and records the declared layer if present
// (spec §4.1, §6).
func Parse(tokens []Token) ([]Item, int, error) {
	p := &parser{tokens: tokens, section: SectionTypes}
	var items []Item

	for {
		tok := p.peek()
		switch tok.Kind {
		case TokEOF:
			return items, p.layer, nil
		case TokSectionTypes:
			p.section = SectionTypes
			p.advance()
		case TokSectionFunctions:
			p.section = SectionFunctions
			p.advance()
		case TokLayer:
			p.layer = tok.Layer
			p.advance()
		case TokIdent:
			item, err := p.parseItem()
			if err != nil {
				return nil, 0, err
			}
			items = append(items, item)
		default:
			return nil, 0, fmt.Errorf("tlschema: line %d: unexpected token %q", tok.Line, tok.Text)
		}
	}
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) expectPunct(s string) error {
	tok := p.advance()
	if tok.Kind != TokPunct || tok.Text != s {
		return fmt.Errorf("tlschema: line %d: expected %q, got %q", tok.Line, s, tok.Text)
	}
	return nil
}

// parseItem parses one constructor: name#hex {typeParam:Type}*
// field:Type* = OutputType ;
func (p *parser) parseItem() (Item, error) {
	nameTok := p.advance()
	item := Item{Name: nameTok.Text, Section: p.section, Line: nameTok.Line}

	if p.peek().Kind == TokHexID {
		hexTok := p.advance()
		id, err := strconv.ParseUint(hexTok.Text, 16, 32)
		if err != nil {
			return Item{}, fmt.Errorf("tlschema: line %d: malformed hex id %q: %w", hexTok.Line, hexTok.Text, err)
		}
		item.HexID = uint32(id)
	} else {
		item.HexID = computeImplicitID(item.Name)
	}

	for p.peek().Kind == TokPunct && p.peek().Text == "{" {
		p.advance()
		field, err := p.parseField()
		if err != nil {
			return Item{}, err
		}
		item.TypeParams = append(item.TypeParams, field)
		if err := p.expectPunct("}"); err != nil {
			return Item{}, err
		}
	}

	for {
		tok := p.peek()
		if tok.Kind == TokPunct && tok.Text == "=" {
			break
		}
		if tok.Kind != TokIdent {
			return Item{}, fmt.Errorf("tlschema: line %d: expected field name or '=', got %q", tok.Line, tok.Text)
		}
		field, err := p.parseField()
		if err != nil {
			return Item{}, err
		}
		item.Fields = append(item.Fields, field)
	}

	if err := p.expectPunct("="); err != nil {
		return Item{}, err
	}

	outType, err := p.parseTypeRef()
	if err != nil {
		return Item{}, err
	}
	item.OutputType = outType

	if err := p.expectPunct(";"); err != nil {
		return Item{}, err
	}
	return item, nil
}

// parseField parses `name:Type` or the inline-conditional form
// `name:flags.N?Type`.
func (p *parser) parseField() (Field, error) {
	nameTok := p.advance()
	if nameTok.Kind != TokIdent {
		return Field{}, fmt.Errorf("tlschema: line %d: expected field name, got %q", nameTok.Line, nameTok.Text)
	}
	if err := p.expectPunct(":"); err != nil {
		return Field{}, err
	}

	field := Field{Name: nameTok.Text}

	// Lookahead for `flags.N?Type`.
	if p.peek().Kind == TokIdent && strings.HasPrefix(p.peek().Text, "flags") {
		save := p.pos
		flagsName := p.advance().Text
		if p.peek().Kind == TokPunct && p.peek().Text == "." {
			p.advance()
			bitTok := p.advance()
			if bitTok.Kind == TokNumber && p.peek().Kind == TokPunct && p.peek().Text == "?" {
				p.advance()
				bit, _ := strconv.Atoi(bitTok.Text)
				field.FlagsField = flagsName
				field.FlagsBit = bit
				typeRef, err := p.parseTypeRef()
				if err != nil {
					return Field{}, err
				}
				field.Type = typeRef
				return field, nil
			}
		}
		p.pos = save
	}

	typeRef, err := p.parseTypeRef()
	if err != nil {
		return Field{}, err
	}
	field.Type = typeRef
	return field, nil
}

// parseTypeRef parses a bare name or a single-level generic
// instantiation `Name<Arg>` (spec §4.1 "generics"; nested generics
// beyond one level do not occur in the schemas this generator targets).
func (p *parser) parseTypeRef() (TypeRef, error) {
	nameTok := p.advance()
	if nameTok.Kind != TokIdent {
		return TypeRef{}, fmt.Errorf("tlschema: line %d: expected type name, got %q", nameTok.Line, nameTok.Text)
	}
	ref := TypeRef{Name: nameTok.Text}

	if p.peek().Kind == TokPunct && p.peek().Text == "<" {
		p.advance()
		inner, err := p.parseTypeRef()
		if err != nil {
			return TypeRef{}, err
		}
		ref.Generic = &inner
		if err := p.expectPunct(">"); err != nil {
			return TypeRef{}, err
		}
	}
	return ref, nil
}

// computeImplicitID derives a constructor id for productions that omit
// `#HEX` by hashing the constructor name alone with 32-bit FNV-1a. This
// is not the CRC32 of the canonicalized declaration that TL uses for
// implicit ids, so the result does not match a server's id. Schemas in
// this repository always specify an explicit id; this only keeps
// constructors without one from all sharing id zero.
func computeImplicitID(name string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return h
}
