/*
Package markup parses vellum page markup: parenthesized page items with
builtin heads (box, vbox, inline, &, #, ^ or implicit text), quoted strings
with backslash escapes, curly-braced style-modifier lists, an optional
leading style block and `;` line comments.

The parser produces a raw item tree. Styling, structural validation and
layout are the concern of the layout package; this package only checks
grammar shape, decodes string escapes and rejects unknown list heads.
*/
package markup

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'vellum.markup'.
func tracer() tracing.Trace {
	return tracing.Select("vellum.markup")
}
