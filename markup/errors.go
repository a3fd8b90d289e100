package markup

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrorKind labels the classes of grammar failure.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	UnmatchedDelimiter
	UnterminatedString
	InvalidEscape
	UnknownBuiltin
)

func (k ErrorKind) String() string {
	switch k {
	case UnmatchedDelimiter:
		return "unmatched delimiter"
	case UnterminatedString:
		return "unterminated string"
	case InvalidEscape:
		return "invalid escape"
	case UnknownBuiltin:
		return "unknown builtin"
	}
	return "unexpected token"
}

// SyntaxError is a fatal grammar failure. Parsing never returns a partial
// page: recovery points are not well defined in a nested grammar, so the
// first failure aborts the document.
type SyntaxError struct {
	Kind ErrorKind
	Pos  lexer.Position
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Pos.Filename == "" {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
}

// classify maps participle parse and lex failures onto the SyntaxError
// taxonomy. src is the full input, used to recognize unterminated strings
// at the failure offset.
func classify(err error, src string) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return err
	}
	pos := perr.Position()

	var unexpected *participle.UnexpectedTokenError
	if errors.As(err, &unexpected) {
		tok := unexpected.Unexpected
		switch {
		case tok.EOF():
			return &SyntaxError{
				Kind: UnmatchedDelimiter,
				Pos:  pos,
				Msg:  "unexpected end of input, unclosed delimiter",
			}
		case tok.Value == ")" || tok.Value == "}":
			return &SyntaxError{
				Kind: UnmatchedDelimiter,
				Pos:  pos,
				Msg:  fmt.Sprintf("unexpected %q", tok.Value),
			}
		}
		return &SyntaxError{Kind: UnexpectedToken, Pos: pos, Msg: perr.Message()}
	}
	if pos.Offset >= 0 && pos.Offset < len(src) && src[pos.Offset] == '"' {
		return &SyntaxError{Kind: UnterminatedString, Pos: pos, Msg: "unterminated string"}
	}
	return &SyntaxError{Kind: UnexpectedToken, Pos: pos, Msg: perr.Message()}
}
