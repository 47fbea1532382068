// Package tlschema implements the .tl grammar lexer, parser, analyzer,
// and generator: it turns schema text into typed Go entities that
// register themselves with a tl.Registry (spec §4.1 Schema generator).
package tlschema

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokHexID
	TokNumber
	TokPunct
	TokSectionTypes
	TokSectionFunctions
	TokLayer
	TokEOF
)

// Token is one lexical unit of a .tl schema.
type Token struct {
	Kind  TokenKind
	Text  string
	Line  int
	Layer int // only meaningful when Kind == TokLayer
}

// Lex tokenizes schema text, stripping `//` and `/* */` comments while
// recognizing the `// LAYER N` comment as a distinguished token (spec
// §6 Schema grammar).
func Lex(src string) ([]Token, error) {
	var tokens []Token
	lines := strings.Split(src, "\n")

	inBlockComment := false
	for lineNo, rawLine := range lines {
		line := rawLine
		if inBlockComment {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				line = line[idx+2:]
				inBlockComment = false
			} else {
				continue
			}
		}

		line = stripBlockComments(line, &inBlockComment)

		if trimmed := strings.TrimSpace(line); trimmed == "---types---" {
			tokens = append(tokens, Token{Kind: TokSectionTypes, Line: lineNo + 1})
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed == "---functions---" {
			tokens = append(tokens, Token{Kind: TokSectionFunctions, Line: lineNo + 1})
			continue
		}

		if idx := strings.Index(line, "//"); idx >= 0 {
			comment := strings.TrimSpace(line[idx+2:])
			if n, ok := parseLayerComment(comment); ok {
				tokens = append(tokens, Token{Kind: TokLayer, Layer: n, Line: lineNo + 1})
			}
			line = line[:idx]
		}

		toks, err := lexLine(line, lineNo+1)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, toks...)
	}

	tokens = append(tokens, Token{Kind: TokEOF})
	return tokens, nil
}

func parseLayerComment(comment string) (int, bool) {
	const prefix = "LAYER"
	if !strings.HasPrefix(comment, prefix) {
		return 0, false
	}
	rest := strings.TrimSpace(comment[len(prefix):])
	n := 0
	any := false
	for _, r := range rest {
		if !unicode.IsDigit(r) {
			break
		}
		n = n*10 + int(r-'0')
		any = true
	}
	return n, any
}

func stripBlockComments(line string, inBlockComment *bool) string {
	for {
		idx := strings.Index(line, "/*")
		if idx < 0 {
			return line
		}
		end := strings.Index(line[idx:], "*/")
		if end < 0 {
			*inBlockComment = true
			return line[:idx]
		}
		line = line[:idx] + line[idx+end+2:]
	}
}

func lexLine(line string, lineNo int) ([]Token, error) {
	var tokens []Token
	i := 0
	n := len(line)
	for i < n {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			j := i + 1
			for j < n && isHexDigit(line[j]) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("tlschema: line %d: empty hex id after '#'", lineNo)
			}
			tokens = append(tokens, Token{Kind: TokHexID, Text: line[i+1 : j], Line: lineNo})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentCont(line[j]) {
				j++
			}
			tokens = append(tokens, Token{Kind: TokIdent, Text: line[i:j], Line: lineNo})
			i = j
		case isDigit(c):
			j := i + 1
			for j < n && isDigit(line[j]) {
				j++
			}
			tokens = append(tokens, Token{Kind: TokNumber, Text: line[i:j], Line: lineNo})
			i = j
		case strings.ContainsRune("{}<>:;=.?%,()", rune(c)):
			tokens = append(tokens, Token{Kind: TokPunct, Text: string(c), Line: lineNo})
			i++
		default:
			return nil, fmt.Errorf("tlschema: line %d: unexpected character %q", lineNo, c)
		}
	}
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
