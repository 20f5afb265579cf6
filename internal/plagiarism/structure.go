package plagiarism

// Symbol is an element of a structure sequence
type Symbol string

const (
	BlockStart Symbol = "BLOCK_START"
	BlockEnd   Symbol = "BLOCK_END"
	ParenOpen  Symbol = "PAREN_OPEN"
	ParenClose Symbol = "PAREN_CLOSE"
	Op         Symbol = "OP"
)

// Structure reduces a token sequence to its control shape: keywords keep
// their lexeme, braces and parentheses become block/paren markers, every
// operator becomes OP and everything else is dropped.
func Structure(tokens []Token) []Symbol {
	symbols := make([]Symbol, 0, len(tokens))

	for _, tok := range tokens {
		switch tok.Kind {
		case KindKeyword:
			symbols = append(symbols, Symbol(tok.Lexeme))
		case KindOperator:
			symbols = append(symbols, Op)
		case KindSeparator:
			switch tok.Lexeme {
			case "{":
				symbols = append(symbols, BlockStart)
			case "}":
				symbols = append(symbols, BlockEnd)
			case "(":
				symbols = append(symbols, ParenOpen)
			case ")":
				symbols = append(symbols, ParenClose)
			}
		}
	}

	return symbols
}
