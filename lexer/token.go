// Package lexer tokenizes Echo source text for both the native
// statement-oriented grammar and the legacy MOO-compat object/verb
// grammar described in the language core's parser component.
package lexer

// TokenType enumerates the lexical token kinds produced by the Lexer.
type TokenType int

const (
	TOKEN_EOF TokenType = iota
	TOKEN_ERROR
	TOKEN_ILLEGAL

	// Literals
	TOKEN_INT
	TOKEN_FLOAT
	TOKEN_STRING
	TOKEN_OBJECT // #N
	TOKEN_ERROR_LIT
	TOKEN_SYSPROP // $name

	// Keywords — Echo surface grammar
	TOKEN_IF
	TOKEN_ELSEIF
	TOKEN_ELSE
	TOKEN_ENDIF
	TOKEN_FOR
	TOKEN_ENDFOR
	TOKEN_WHILE
	TOKEN_ENDWHILE
	TOKEN_RETURN
	TOKEN_BREAK
	TOKEN_CONTINUE
	TOKEN_TRY
	TOKEN_CATCH
	TOKEN_FINALLY
	TOKEN_ENDTRY
	TOKEN_MATCH
	TOKEN_CASE
	TOKEN_WHEN
	TOKEN_ENDMATCH
	TOKEN_FN
	TOKEN_ENDFN
	TOKEN_OBJECT_KW
	TOKEN_ENDOBJECT
	TOKEN_LET
	TOKEN_CONST
	TOKEN_TRUE
	TOKEN_FALSE
	TOKEN_NULL
	TOKEN_IN
	TOKEN_EVENT

	// Keywords — MOO-compat object-file grammar
	TOKEN_PROPERTY
	TOKEN_OVERRIDE
	TOKEN_VERB
	TOKEN_ENDVERB
	TOKEN_DEFINE

	TOKEN_IDENTIFIER

	// Operators
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_PERCENT
	TOKEN_CARET

	TOKEN_EQ
	TOKEN_NE
	TOKEN_LT
	TOKEN_GT
	TOKEN_LE
	TOKEN_GE

	TOKEN_AND
	TOKEN_OR
	TOKEN_NOT

	TOKEN_ASSIGN
	TOKEN_QUESTION
	TOKEN_COLON2 // ::  (unused placeholder kept for MOO-compat signatures)
	TOKEN_RANGE  // ..
	TOKEN_FATARROW
	TOKEN_REST // @ (rest parameter / splice)

	// Delimiters
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_LBRACKET
	TOKEN_RBRACKET
	TOKEN_COMMA
	TOKEN_SEMICOLON
	TOKEN_DOT
	TOKEN_COLON
	TOKEN_AT
	TOKEN_DOLLAR
	TOKEN_BANG
	TOKEN_UNDERSCORE
)

// Position locates a token in the original source by line, column, and
// byte offset; parse errors report the offset per the parser contract.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is one lexical unit.
type Token struct {
	Type     TokenType
	Value    string
	Literal  string // decoded contents, for TOKEN_STRING
	Position Position
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF: "EOF", TOKEN_ERROR: "ERROR", TOKEN_ILLEGAL: "ILLEGAL",
	TOKEN_INT: "INT", TOKEN_FLOAT: "FLOAT", TOKEN_STRING: "STRING",
	TOKEN_OBJECT: "OBJECT", TOKEN_ERROR_LIT: "ERROR_LIT", TOKEN_SYSPROP: "SYSPROP",
	TOKEN_IF: "IF", TOKEN_ELSEIF: "ELSEIF", TOKEN_ELSE: "ELSE", TOKEN_ENDIF: "ENDIF",
	TOKEN_FOR: "FOR", TOKEN_ENDFOR: "ENDFOR", TOKEN_WHILE: "WHILE", TOKEN_ENDWHILE: "ENDWHILE",
	TOKEN_RETURN: "RETURN", TOKEN_BREAK: "BREAK", TOKEN_CONTINUE: "CONTINUE",
	TOKEN_TRY: "TRY", TOKEN_CATCH: "CATCH", TOKEN_FINALLY: "FINALLY", TOKEN_ENDTRY: "ENDTRY",
	TOKEN_MATCH: "MATCH", TOKEN_CASE: "CASE", TOKEN_WHEN: "WHEN", TOKEN_ENDMATCH: "ENDMATCH",
	TOKEN_FN: "FN", TOKEN_ENDFN: "ENDFN", TOKEN_OBJECT_KW: "OBJECT_KW", TOKEN_ENDOBJECT: "ENDOBJECT",
	TOKEN_LET: "LET", TOKEN_CONST: "CONST", TOKEN_TRUE: "TRUE", TOKEN_FALSE: "FALSE",
	TOKEN_NULL: "NULL", TOKEN_IN: "IN", TOKEN_EVENT: "EVENT",
	TOKEN_PROPERTY: "PROPERTY", TOKEN_OVERRIDE: "OVERRIDE", TOKEN_VERB: "VERB",
	TOKEN_ENDVERB: "ENDVERB", TOKEN_DEFINE: "DEFINE",
	TOKEN_IDENTIFIER: "IDENTIFIER",
	TOKEN_PLUS:       "PLUS", TOKEN_MINUS: "MINUS", TOKEN_STAR: "STAR", TOKEN_SLASH: "SLASH",
	TOKEN_PERCENT: "PERCENT", TOKEN_CARET: "CARET",
	TOKEN_EQ: "EQ", TOKEN_NE: "NE", TOKEN_LT: "LT", TOKEN_GT: "GT", TOKEN_LE: "LE", TOKEN_GE: "GE",
	TOKEN_AND: "AND", TOKEN_OR: "OR", TOKEN_NOT: "NOT",
	TOKEN_ASSIGN: "ASSIGN", TOKEN_QUESTION: "QUESTION", TOKEN_COLON2: "COLON2",
	TOKEN_RANGE: "RANGE", TOKEN_FATARROW: "FATARROW", TOKEN_REST: "REST",
	TOKEN_LPAREN: "LPAREN", TOKEN_RPAREN: "RPAREN", TOKEN_LBRACE: "LBRACE", TOKEN_RBRACE: "RBRACE",
	TOKEN_LBRACKET: "LBRACKET", TOKEN_RBRACKET: "RBRACKET", TOKEN_COMMA: "COMMA",
	TOKEN_SEMICOLON: "SEMICOLON", TOKEN_DOT: "DOT", TOKEN_COLON: "COLON", TOKEN_AT: "AT",
	TOKEN_DOLLAR: "DOLLAR", TOKEN_BANG: "BANG", TOKEN_UNDERSCORE: "UNDERSCORE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"if": TOKEN_IF, "elseif": TOKEN_ELSEIF, "else": TOKEN_ELSE, "endif": TOKEN_ENDIF,
	"for": TOKEN_FOR, "endfor": TOKEN_ENDFOR, "while": TOKEN_WHILE, "endwhile": TOKEN_ENDWHILE,
	"return": TOKEN_RETURN, "break": TOKEN_BREAK, "continue": TOKEN_CONTINUE,
	"try": TOKEN_TRY, "catch": TOKEN_CATCH, "finally": TOKEN_FINALLY, "endtry": TOKEN_ENDTRY,
	"match": TOKEN_MATCH, "case": TOKEN_CASE, "when": TOKEN_WHEN, "endmatch": TOKEN_ENDMATCH,
	"fn": TOKEN_FN, "endfn": TOKEN_ENDFN, "object": TOKEN_OBJECT_KW, "endobject": TOKEN_ENDOBJECT,
	"let": TOKEN_LET, "const": TOKEN_CONST, "true": TOKEN_TRUE, "false": TOKEN_FALSE,
	"null": TOKEN_NULL, "in": TOKEN_IN, "event": TOKEN_EVENT,
	"property": TOKEN_PROPERTY, "override": TOKEN_OVERRIDE, "verb": TOKEN_VERB,
	"endverb": TOKEN_ENDVERB, "define": TOKEN_DEFINE,
}

// LookupKeyword reports the keyword TokenType for ident, or
// TOKEN_IDENTIFIER if ident is not a reserved word.
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if ident == "_" {
		return TOKEN_UNDERSCORE
	}
	return TOKEN_IDENTIFIER
}
