// SPDX-License-Identifier: MPL-2.0

package interp

import (
	"fmt"
	"strings"
)

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\v' || ch == '\f'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdent(ch byte) bool { return isAlpha(ch) || isDigit(ch) || ch == '_' }

// Tokenize splits source into tokens, tracking 1-based line/column
// positions. Keywords match case-insensitively and are normalized to upper
// case; words that are not keywords become IDENT tokens. Any character
// outside numbers, words, colons and whitespace fails with ErrInvalidToken.
// The final token is always EOF.
func Tokenize(source string) ([]Token, error) {
	var tokens []Token
	line, column := 1, 1
	i := 0

	for i < len(source) {
		ch := source[i]

		if isSpace(ch) {
			if ch == '\n' {
				line++
				column = 1
			} else {
				column++
			}
			i++
			continue
		}

		if isDigit(ch) {
			start := column
			j := i
			for j < len(source) && isDigit(source[j]) {
				j++
				column++
			}
			tokens = append(tokens, Token{Type: NUMBER, Value: source[i:j], Line: line, Column: start})
			i = j
			continue
		}

		if isAlpha(ch) {
			start := column
			j := i
			for j < len(source) && isIdent(source[j]) {
				j++
				column++
			}
			word := source[i:j]
			upper := strings.ToUpper(word)
			if kind, ok := keywords[upper]; ok {
				tokens = append(tokens, Token{Type: kind, Value: upper, Line: line, Column: start})
			} else {
				tokens = append(tokens, Token{Type: IDENT, Value: word, Line: line, Column: start})
			}
			i = j
			continue
		}

		if ch == ':' {
			tokens = append(tokens, Token{Type: COLON, Value: ":", Line: line, Column: column})
			i++
			column++
			continue
		}

		return nil, fmt.Errorf("%w: unknown character %q at line %d, column %d", ErrInvalidToken, ch, line, column)
	}

	tokens = append(tokens, Token{Type: EOF, Line: line, Column: column})
	return tokens, nil
}

// TokenCount returns the number of meaningful tokens in source (EOF
// excluded), or 0 when the source does not tokenize.
func TokenCount(source string) int {
	tokens, err := Tokenize(source)
	if err != nil {
		return 0
	}
	return len(tokens) - 1
}
