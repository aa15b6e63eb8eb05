package query

// TokenType classifies a lexical token.
type TokenType int

const (
	EOF TokenType = iota
	INVALID
	IDENT
	QUOTED_IDENT //nolint:revive // mirrors the other token names
	NUMBER
	STRING
	LPAREN
	RPAREN
	COMMA
	PIPE
	ARROW
	OPERATOR
)

var tokenNames = map[TokenType]string{
	EOF:          "end of query",
	INVALID:      "invalid character",
	IDENT:        "identifier",
	QUOTED_IDENT: "identifier",
	NUMBER:       "number",
	STRING:       "string",
	LPAREN:       "'('",
	RPAREN:       "')'",
	COMMA:        "','",
	PIPE:         "'|'",
	ARROW:        "'->'",
	OPERATOR:     "comparison operator",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "unknown token"
}

// Token is one lexical unit. Position is the byte offset of its first
// character in the query.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}
