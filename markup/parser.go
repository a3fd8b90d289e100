package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `;[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Mark", Pattern: `[&#^]`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	pageParser = participle.MustBuild[Page](
		participle.Lexer(markupLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// Page is the root of the raw item tree: an optional leading style block
// followed by the page items.
type Page struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Styles *StyleBlock    `parser:"@@?" json:"styles,omitempty"`
	Items  []*Item        `parser:"@@*" json:"items"`
}

// StyleBlock is the leading `{ name (modifier...) ... }` block naming
// reusable styles for the whole page.
type StyleBlock struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Defs []*StyleDef    `parser:"'{' @@* '}'" json:"defs"`
}

// StyleDef binds one style name to an ordered modifier list.
type StyleDef struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident" json:"name"`
	Mods []*Mod         `parser:"'(' @@* ')'" json:"mods"`
}

// Item is one parenthesized page item. Head is empty for implicit text
// lists, otherwise the builtin symbol that opened the list.
type Item struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Head  string         `parser:"'(' ( @Ident | @Mark )?" json:"head,omitempty"`
	Parts []*Part        `parser:"@@* ')'" json:"parts,omitempty"`
}

// Part is a single constituent of an item: a style list, a string literal
// or a nested item.
type Part struct {
	Style *StyleList `parser:"  @@" json:"style,omitempty"`
	Str   *Str       `parser:"| @@" json:"str,omitempty"`
	Item  *Item      `parser:"| @@" json:"item,omitempty"`
}

// StyleList is a `{...}` modifier list attached to one item.
type StyleList struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Mods []*Mod         `parser:"'{' @@* '}'" json:"mods"`
}

// Mod is one style modifier: a bare word (`bold`, or a named style
// reference) or a call with a single string argument (`(fg "00ff00")`).
type Mod struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Flag string         `parser:"  @Ident" json:"flag,omitempty"`
	Call *Call          `parser:"| @@" json:"call,omitempty"`
}

// Call is the argument form of a modifier.
type Call struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"'(' @Ident" json:"name"`
	Arg  *Str           `parser:"@@ ')'" json:"arg"`
}

// Str is a quoted string literal. Value holds the decoded text, Raw the
// source form including quotes.
type Str struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Raw   string         `parser:"@String" json:"-"`
	Value string         `parser:"" json:"value"`
}

// Name returns the modifier name regardless of form.
func (m *Mod) Name() string {
	if m.Call != nil {
		return m.Call.Name
	}
	return m.Flag
}

// Arg returns the modifier argument and whether one was given.
func (m *Mod) Arg() (string, bool) {
	if m.Call != nil && m.Call.Arg != nil {
		return m.Call.Arg.Value, true
	}
	return "", false
}

// Position returns the source position of the modifier.
func (m *Mod) Position() lexer.Position {
	if m.Call != nil {
		return m.Call.Pos
	}
	return m.Pos
}

// builtinHeads lists the item heads the document builder understands. An
// item without a head is an implicit text list.
var builtinHeads = map[string]bool{
	"":       true,
	"text":   true,
	"box":    true,
	"vbox":   true,
	"inline": true,
	"&":      true,
	"#":      true,
	"^":      true,
}

// Parse parses a complete markup document from r.
func Parse(r io.Reader) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}

// ParseString parses a complete markup document. On success the returned
// page has all string escapes decoded and consecutive strings inside text
// lists merged; any grammar failure aborts the whole document.
func ParseString(input string) (*Page, error) {
	page, err := pageParser.ParseString("", input)
	if err != nil {
		return nil, classify(err, input)
	}
	if err := normalize(page); err != nil {
		return nil, err
	}
	n := 0
	if page.Styles != nil {
		n = len(page.Styles.Defs)
	}
	tracer().Debugf("parsed page: %d style defs, %d top-level items", n, len(page.Items))
	return page, nil
}

// normalize decodes string escapes, merges consecutive strings inside text
// lists and rejects unknown list heads. The tree is walked with an explicit
// stack so deeply nested input cannot exhaust the call stack.
func normalize(page *Page) error {
	if page.Styles != nil {
		for _, def := range page.Styles.Defs {
			for _, mod := range def.Mods {
				if err := decodeMod(mod); err != nil {
					return err
				}
			}
		}
	}
	stack := make([]*Item, 0, len(page.Items))
	for i := len(page.Items) - 1; i >= 0; i-- {
		stack = append(stack, page.Items[i])
	}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !builtinHeads[item.Head] {
			return &SyntaxError{
				Kind: UnknownBuiltin,
				Pos:  item.Pos,
				Msg:  fmt.Sprintf("unknown builtin %q", item.Head),
			}
		}
		for _, part := range item.Parts {
			switch {
			case part.Str != nil:
				if err := decodeStr(part.Str); err != nil {
					return err
				}
			case part.Style != nil:
				for _, mod := range part.Style.Mods {
					if err := decodeMod(mod); err != nil {
						return err
					}
				}
			case part.Item != nil:
				stack = append(stack, part.Item)
			}
		}
		if item.Head == "" || item.Head == "text" {
			mergeStrings(item)
		}
	}
	return nil
}

// mergeStrings joins consecutive string parts of a text list into the first
// literal of the run.
func mergeStrings(item *Item) {
	out := item.Parts[:0]
	var last *Str
	for _, part := range item.Parts {
		if part.Str != nil {
			if last != nil {
				last.Value += part.Str.Value
				continue
			}
			last = part.Str
		} else {
			last = nil
		}
		out = append(out, part)
	}
	item.Parts = out
}

func decodeMod(m *Mod) error {
	if m.Call != nil && m.Call.Arg != nil {
		return decodeStr(m.Call.Arg)
	}
	return nil
}

// decodeStr decodes the escapes of a string literal. Only \" and \\ are
// legal escape sequences.
func decodeStr(s *Str) error {
	body := s.Raw[1 : len(s.Raw)-1]
	if !strings.ContainsRune(body, '\\') {
		s.Value = body
		return nil
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		// the lexer guarantees a character follows the backslash
		i++
		switch body[i] {
		case '"', '\\':
			b.WriteByte(body[i])
		default:
			pos := s.Pos
			pos.Advance(s.Raw[:i])
			return &SyntaxError{
				Kind: InvalidEscape,
				Pos:  pos,
				Msg:  fmt.Sprintf("invalid escape sequence \\%c", body[i]),
			}
		}
	}
	s.Value = b.String()
	return nil
}
