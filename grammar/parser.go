package grammar

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

var parser = buildParser()

func buildParser() *participle.Parser[Program] {
	p, err := participle.Build[Program](
		participle.Lexer(BrilLexer),
		participle.Elide("Whitespace", "Comment"),
		// Distinguish `x: int = op ...` from `op ...` at the head of a line.
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build parser: %w", err))
	}
	return p
}

// Parse parses textual Bril source.
func Parse(sourceName, source string) (*Program, error) {
	return parser.ParseString(sourceName, source)
}
