package markup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ByLCY/vellum/markup"
)

const samplePage = `
; front page of the demo site
{
  title (bold (size "20"))
  note  ((fg "666666") (size "10"))
  navy  (note (fg "001F5E"))
}

(# "top")
({title} "Weather Service")
(vbox
  (inline
    (^ "vellum://home" "home")
    ({note} " | ")
    (^ "vellum://stations" {bold} "stations"))
  ({note} "Forecasts are refreshed every ten minutes.")
  (box
    (vbox {(fill "1")} ("left"))
    (vbox {(fill "2")} ("right")))
  (& "chart" "forecast chart"))
`

func TestParsePage(t *testing.T) {
	page, err := markup.ParseString(samplePage)
	require.NoError(t, err)

	require.NotNil(t, page.Styles)
	require.Len(t, page.Styles.Defs, 3)
	require.Equal(t, "title", page.Styles.Defs[0].Name)
	require.Len(t, page.Styles.Defs[0].Mods, 2)
	require.Equal(t, "bold", page.Styles.Defs[0].Mods[0].Name())

	require.Len(t, page.Items, 3)
	require.Equal(t, "#", page.Items[0].Head)
	require.Equal(t, "", page.Items[1].Head)
	require.Equal(t, "vbox", page.Items[2].Head)

	vbox := page.Items[2]
	require.Len(t, vbox.Parts, 4)
	require.NotNil(t, vbox.Parts[0].Item)
	require.Equal(t, "inline", vbox.Parts[0].Item.Head)
	require.Equal(t, "&", vbox.Parts[3].Item.Head)
}

func TestParseReader(t *testing.T) {
	page, err := markup.Parse(strings.NewReader(`("hello")`))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "hello", page.Items[0].Parts[0].Str.Value)
}

func TestParseEmptyPage(t *testing.T) {
	page, err := markup.ParseString("")
	require.NoError(t, err)
	require.Nil(t, page.Styles)
	require.Empty(t, page.Items)
}

func TestModifierForms(t *testing.T) {
	page, err := markup.ParseString(`({bold (fg "0F62FE") note} "x")`)
	require.NoError(t, err)

	mods := page.Items[0].Parts[0].Style.Mods
	require.Len(t, mods, 3)

	require.Equal(t, "bold", mods[0].Name())
	_, ok := mods[0].Arg()
	require.False(t, ok)

	require.Equal(t, "fg", mods[1].Name())
	arg, ok := mods[1].Arg()
	require.True(t, ok)
	require.Equal(t, "0F62FE", arg)

	require.Equal(t, "note", mods[2].Name())
}

func TestStringEscapes(t *testing.T) {
	page, err := markup.ParseString(`("say \"hi\" and a back\\slash")`)
	require.NoError(t, err)
	require.Equal(t, `say "hi" and a back\slash`, page.Items[0].Parts[0].Str.Value)
}

func TestAdjacentStringsMerge(t *testing.T) {
	page, err := markup.ParseString(`("fore" "cast" " ready")`)
	require.NoError(t, err)
	require.Len(t, page.Items[0].Parts, 1)
	require.Equal(t, "forecast ready", page.Items[0].Parts[0].Str.Value)

	// merging is a text-list rule, strings of a link stay separate
	page, err = markup.ParseString(`(^ "vellum://a" "b")`)
	require.NoError(t, err)
	require.Len(t, page.Items[0].Parts, 2)
}

func TestComments(t *testing.T) {
	page, err := markup.ParseString("; banner\n(\"text\") ; trailing\n")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  markup.ErrorKind
	}{
		{"unclosed item", `(vbox ("a")`, markup.UnmatchedDelimiter},
		{"unclosed style block", `{ title (bold)`, markup.UnmatchedDelimiter},
		{"stray close", `("a"))`, markup.UnmatchedDelimiter},
		{"unterminated string", `("abc`, markup.UnterminatedString},
		{"bad escape", `("a\nb")`, markup.InvalidEscape},
		{"unknown head", `(div "x")`, markup.UnknownBuiltin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := markup.ParseString(tt.input)
			require.Error(t, err)
			var serr *markup.SyntaxError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, tt.kind, serr.Kind, "got %q", serr.Msg)
			require.Greater(t, serr.Pos.Line, 0)
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	_, err := markup.ParseString(`(div "x")`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown builtin")
	require.Contains(t, err.Error(), "1:1")
}
