package assembler

import (
	"fmt"

	"rv32asm/isa"
)

// TokenKind classifies a lexed token.
type TokenKind int

const (
	// TokenLabel is a word followed by a colon.
	TokenLabel TokenKind = iota
	// TokenMnemonic is a bare word that is not a known register name.
	// Label references also lex as mnemonics.
	TokenMnemonic
	// TokenRegister is a word matching a register name or ABI alias.
	TokenRegister
	// TokenImmediate is a signed decimal or 0x-prefixed hex number.
	TokenImmediate
	// TokenComma separates operands.
	TokenComma
	// TokenLParen opens a load/store displacement.
	TokenLParen
	// TokenRParen closes a load/store displacement.
	TokenRParen
	// TokenDirective is a dot-prefixed word such as .org.
	TokenDirective
)

// Token is one lexed element. Text is a slice of the original source and
// stays valid for as long as the source string does; the lexer never copies.
type Token struct {
	Kind TokenKind
	Text string
	Line int
}

// Tokenize scans src left to right and returns the token sequence.
// It performs no semantic checks; unknown mnemonics surface during encoding.
func Tokenize(src string) ([]Token, error) {
	var tokens []Token
	line := 1

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '#':
			// Line comment.
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case isSpace(c):
			if c == '\n' {
				line++
			}
			i++

		case c == ',':
			tokens = append(tokens, Token{TokenComma, src[i : i+1], line})
			i++

		case c == '(':
			tokens = append(tokens, Token{TokenLParen, src[i : i+1], line})
			i++

		case c == ')':
			tokens = append(tokens, Token{TokenRParen, src[i : i+1], line})
			i++

		case c == '.':
			start := i
			i++
			for i < len(src) && isWordChar(src[i]) {
				i++
			}
			tokens = append(tokens, Token{TokenDirective, src[start:i], line})

		case isLetter(c) || c == '_':
			start := i
			for i < len(src) && isWordChar(src[i]) {
				i++
			}
			if i < len(src) && src[i] == ':' {
				// The colon is consumed but not part of the label text.
				tokens = append(tokens, Token{TokenLabel, src[start:i], line})
				i++
				break
			}
			word := src[start:i]
			if _, ok := isa.LookupRegister(word); ok {
				tokens = append(tokens, Token{TokenRegister, word, line})
			} else {
				tokens = append(tokens, Token{TokenMnemonic, word, line})
			}

		case c == '+' || c == '-' || isDigit(c):
			start := i
			if c == '+' || c == '-' {
				i++
			}
			if i+1 < len(src) && src[i] == '0' && (src[i+1] == 'x' || src[i+1] == 'X') {
				i += 2
				for i < len(src) && isHexDigit(src[i]) {
					i++
				}
			} else {
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			tokens = append(tokens, Token{TokenImmediate, src[start:i], line})

		default:
			return nil, fmt.Errorf("%w %q on line %d", ErrUnexpectedChar, rune(c), line)
		}
	}

	return tokens, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isWordChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
