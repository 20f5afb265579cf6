package plagiarism

import "strings"

var cKeywords = []string{
	"auto", "break", "case", "char", "const", "continue",
	"default", "do", "double", "else", "enum", "extern",
	"float", "for", "goto", "if", "int", "long", "register",
	"return", "short", "signed", "sizeof", "static", "struct",
	"switch", "typedef", "union", "unsigned", "void", "volatile",
	"while", "inline",
}

var cppKeywords = []string{
	"bool", "catch", "class", "constexpr", "delete", "explicit", "false",
	"friend", "mutable", "namespace", "new", "nullptr", "operator",
	"private", "protected", "public", "template", "this", "throw", "true",
	"try", "typename", "using", "virtual",
}

var javaKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch",
	"char", "class", "const", "continue", "default", "do", "double",
	"else", "enum", "extends", "final", "finally", "float", "for", "goto",
	"if", "implements", "import", "instanceof", "int", "interface", "long",
	"native", "new", "package", "private", "protected", "public", "return",
	"short", "static", "strictfp", "super", "switch", "synchronized",
	"this", "throw", "throws", "transient", "try", "void", "volatile",
	"while", "var", "true", "false", "null",
}

var goKeywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var",
}

var pythonKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

var javascriptKeywords = []string{
	"await", "break", "case", "catch", "class", "const", "continue",
	"debugger", "default", "delete", "do", "else", "export", "extends",
	"false", "finally", "for", "function", "if", "import", "in",
	"instanceof", "let", "new", "null", "return", "super", "switch",
	"this", "throw", "true", "try", "typeof", "var", "void", "while",
	"with", "yield",
}

// KeywordsFor returns the reserved word set for a language. Unknown or empty
// languages use the C set.
func KeywordsFor(language string) map[string]struct{} {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "cpp", "c++":
		return keywordSet(cKeywords, cppKeywords)
	case "java":
		return keywordSet(javaKeywords)
	case "go", "golang":
		return keywordSet(goKeywords)
	case "python", "py":
		return keywordSet(pythonKeywords)
	case "javascript", "js", "typescript", "ts":
		return keywordSet(javascriptKeywords)
	default:
		return keywordSet(cKeywords)
	}
}

func keywordSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, word := range list {
			set[word] = struct{}{}
		}
	}
	return set
}
