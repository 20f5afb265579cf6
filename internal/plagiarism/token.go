package plagiarism

import (
	"errors"
	"fmt"
)

// ErrTooManyTokens is returned when a source text produces more tokens than
// the lexer is allowed to emit.
var ErrTooManyTokens = errors.New("token limit exceeded")

// DefaultMaxTokens bounds the token sequence of a single input
const DefaultMaxTokens = 10000

const (
	literalString = "STR"
	literalNumber = "NUM"
)

// Kind classifies a token
type Kind int

const (
	KindKeyword Kind = iota
	KindIdentifier
	KindOperator
	KindLiteral
	KindSeparator
	KindComment
	KindWhitespace
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindIdentifier:
		return "identifier"
	case KindOperator:
		return "operator"
	case KindLiteral:
		return "literal"
	case KindSeparator:
		return "separator"
	case KindComment:
		return "comment"
	case KindWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Token is a classified lexeme. Literal lexemes are normalized to STR or NUM.
type Token struct {
	Kind   Kind
	Lexeme string
}

// Lexer turns source text into a token sequence
type Lexer struct {
	keywords  map[string]struct{}
	maxTokens int
}

type LexerOption func(*Lexer)

// WithKeywords replaces the reserved word set
func WithKeywords(keywords map[string]struct{}) LexerOption {
	return func(l *Lexer) {
		l.keywords = keywords
	}
}

// WithMaxTokens sets the token cap; n <= 0 disables it
func WithMaxTokens(n int) LexerOption {
	return func(l *Lexer) {
		l.maxTokens = n
	}
}

func NewLexer(opts ...LexerOption) *Lexer {
	l := &Lexer{
		keywords:  KeywordsFor(""),
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize scans src once, left to right, using the default C keyword set and
// no token cap. It never fails.
func Tokenize(src string) []Token {
	tokens, _ := NewLexer(WithMaxTokens(0)).Tokenize(src)
	return tokens
}

// Tokenize scans src once, left to right. Comments and whitespace are skipped,
// unterminated comments and literals run to the end of input, and bytes that
// match no class are dropped. The only failure is exceeding the token cap.
func (l *Lexer) Tokenize(src string) ([]Token, error) {
	tokens := make([]Token, 0, len(src)/4)
	emit := func(kind Kind, lexeme string) error {
		if l.maxTokens > 0 && len(tokens) >= l.maxTokens {
			return fmt.Errorf("%w: more than %d tokens", ErrTooManyTokens, l.maxTokens)
		}
		tokens = append(tokens, Token{Kind: kind, Lexeme: lexeme})
		return nil
	}

	n := len(src)
	i := 0
	for i < n {
		c := src[i]

		switch {
		case isSpace(c):
			i++
			continue

		case c == '/' && i+1 < n && src[i+1] == '/':
			i += 2
			for i < n && src[i] != '\n' {
				i++
			}
			continue

		case c == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
			continue

		case c == '"' || c == '\'':
			i++
			for i < n && src[i] != c {
				if src[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			if i < n {
				i++
			}
			if err := emit(KindLiteral, literalString); err != nil {
				return nil, err
			}
			continue

		case isDigit(c):
			for i < n && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			if err := emit(KindLiteral, literalNumber); err != nil {
				return nil, err
			}
			continue

		case isLetter(c) || c == '_':
			start := i
			for i < n && (isLetter(src[i]) || isDigit(src[i]) || src[i] == '_') {
				i++
			}
			word := src[start:i]
			kind := KindIdentifier
			if _, ok := l.keywords[word]; ok {
				kind = KindKeyword
			}
			if err := emit(kind, word); err != nil {
				return nil, err
			}
			continue

		case isOperator(c):
			width := 1
			if i+1 < n && isOperator(src[i+1]) {
				width = 2
			}
			if err := emit(KindOperator, src[i:i+width]); err != nil {
				return nil, err
			}
			i += width
			continue

		case isSeparator(c):
			if err := emit(KindSeparator, src[i:i+1]); err != nil {
				return nil, err
			}
			i++
			continue
		}

		i++
	}

	return tokens, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '&', '|', '^', '~', '.':
		return true
	}
	return false
}

func isSeparator(c byte) bool {
	switch c {
	case '(', ')', '{', '}', '[', ']', ';', ',', ':':
		return true
	}
	return false
}
