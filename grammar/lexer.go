package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// BrilLexer tokenizes the textual Bril form. Order matters: function and
// label sigils bind before bare identifiers, comments are elided later.
var BrilLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},

		{"Func", `@[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Label", `\.[a-zA-Z_][a-zA-Z0-9_.]*`, nil},

		{"Ident", `[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Integer", `-?[0-9]+`, nil},

		{"Punctuation", `[{}():;=,<>]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
