package ident

// pythonKeywords are the reserved words of the target language. A generated
// or user-supplied identifier may never equal one of these.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true,
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// runtimeNames are identifiers claimed by the generated runtime environment:
// the dataframe and numpy handles plus a few generic container words that
// generated code binds itself.
var runtimeNames = map[string]bool{
	"data":   true,
	"df":     true,
	"result": true,
	"value":  true,
	"index":  true,
	"np":     true,
	"pd":     true,
}

// Reserved reports whether name may not be used as a target identifier.
func Reserved(name string) bool {
	return pythonKeywords[name] || runtimeNames[name]
}
