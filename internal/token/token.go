// Package token defines the closed set of lexical token kinds for weak and
// the Token value type that carries a kind, payload, and source position.
package token

import "fmt"

// Kind is the closed enumeration of token kinds (spec §6, exhaustive).
type Kind int

const (
	Invalid Kind = iota

	// Keywords.
	Bool
	Break
	Char
	Continue
	Do
	Else
	False
	Float
	For
	If
	Int
	Return
	String
	Struct
	True
	Void
	While

	// Literals.
	CharLiteral
	IntLiteral
	FloatLiteral
	StringLiteral
	Symbol

	// Operators and punctuation.
	Assign
	MulAssign
	DivAssign
	ModAssign
	PlusAssign
	MinusAssign
	ShlAssign
	ShrAssign
	BitAndAssign
	BitOrAssign
	XorAssign
	And
	Or
	Xor
	BitAnd
	BitOr
	Eq
	Neq
	Gt
	Lt
	Ge
	Le
	Shr
	Shl
	Plus
	Minus
	Star
	Slash
	Mod
	Inc
	Dec
	Dot
	Comma
	Colon
	Semicolon
	Not
	OpenBoxBracket
	CloseBoxBracket
	OpenCurlyBracket
	CloseCurlyBracket
	OpenParen
	CloseParen

	EOF
)

var names = map[Kind]string{
	Invalid: "invalid",

	Bool: "bool", Break: "break", Char: "char", Continue: "continue",
	Do: "do", Else: "else", False: "false", Float: "float", For: "for",
	If: "if", Int: "int", Return: "return", String: "string", Struct: "struct",
	True: "true", Void: "void", While: "while",

	CharLiteral: "char_literal", IntLiteral: "int_literal",
	FloatLiteral: "float_literal", StringLiteral: "string_literal",
	Symbol: "symbol",

	Assign: "=", MulAssign: "*=", DivAssign: "/=", ModAssign: "%=",
	PlusAssign: "+=", MinusAssign: "-=", ShlAssign: "<<=", ShrAssign: ">>=",
	BitAndAssign: "&=", BitOrAssign: "|=", XorAssign: "^=",
	And: "&&", Or: "||", Xor: "^", BitAnd: "&", BitOr: "|",
	Eq: "==", Neq: "!=", Gt: ">", Lt: "<", Ge: ">=", Le: "<=",
	Shr: ">>", Shl: "<<", Plus: "+", Minus: "-", Star: "*", Slash: "/", Mod: "%",
	Inc: "++", Dec: "--", Dot: ".", Comma: ",", Colon: ":", Semicolon: ";",
	Not: "!", OpenBoxBracket: "[", CloseBoxBracket: "]",
	OpenCurlyBracket: "{", CloseCurlyBracket: "}",
	OpenParen: "(", CloseParen: ")",

	EOF: "eof",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps the exact spelling of each keyword to its Kind. Built once
// as a lookup table the way the original Lexer.cpp's LexKeywords map does.
var Keywords = map[string]Kind{
	"bool": Bool, "break": Break, "char": Char, "continue": Continue,
	"do": Do, "else": Else, "false": False, "float": Float, "for": For,
	"if": If, "int": Int, "return": Return, "string": String, "struct": Struct,
	"true": True, "void": Void, "while": While,
}

// keywordLength restores Lexer.cpp's NormalizeColumnPos table: the exact
// textual length of each keyword, used to correct the emitted column back to
// the keyword's first character.
var keywordLength = map[Kind]int{
	Bool: 4, Break: 5, Char: 4, Continue: 8, Do: 2, Else: 4, False: 5,
	Float: 5, For: 3, If: 2, Int: 3, Return: 6, String: 6, Struct: 6, True: 4,
	Void: 4, While: 5,
}

// KeywordLength reports the exact spelling length of a keyword kind, or
// (0, false) if k is not a keyword.
func KeywordLength(k Kind) (int, bool) {
	n, ok := keywordLength[k]
	return n, ok
}

// Operators maps every known operator spelling to its Kind. The lexer grows a
// maximal-munch candidate one byte at a time and looks each candidate up
// here, exactly as Lexer.cpp's LexOperators table is used.
var Operators = map[string]Kind{
	"=": Assign, "*=": MulAssign, "/=": DivAssign, "%=": ModAssign,
	"+=": PlusAssign, "-=": MinusAssign, "<<=": ShlAssign, ">>=": ShrAssign,
	"&=": BitAndAssign, "|=": BitOrAssign, "^=": XorAssign,
	"&&": And, "||": Or, "^": Xor, "&": BitAnd, "|": BitOr,
	"==": Eq, "!=": Neq, ">": Gt, "<": Lt, ">=": Ge, "<=": Le,
	">>": Shr, "<<": Shl, "+": Plus, "-": Minus, "*": Star, "/": Slash, "%": Mod,
	"++": Inc, "--": Dec, ",": Comma, ";": Semicolon, "!": Not,
	"[": OpenBoxBracket, "]": CloseBoxBracket,
	"{": OpenCurlyBracket, "}": CloseCurlyBracket,
	"(": OpenParen, ")": CloseParen,
	".": Dot, ":": Colon,
}

// Position is a 1-based (line, column) source position pointing at the
// first character of a lexeme.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token is a value type: kind, textual payload (may be empty), and
// position. Comparing two Tokens with == compares Pos as well as Kind and
// Text; the package has no position-insensitive equality helper.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// IsKeyword reports whether k names one of weak's reserved words.
func IsKeyword(k Kind) bool {
	_, ok := keywordLength[k]
	return ok
}
