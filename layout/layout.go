/*
Package layout turns a parsed markup page into a positioned frame tree.

The pipeline inside this package: BuildStyleTable collects the page's named
styles, BuildDocument produces the typed document tree with resolved styles,
and Layout runs the two-phase engine (widths top-down, heights bottom-up)
against a viewport and a text shaping collaborator. Everything after
BuildDocument treats the document as read-only, so one document may be laid
out concurrently under several viewports.
*/
package layout

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'vellum.layout'.
func tracer() tracing.Trace {
	return tracing.Select("vellum.layout")
}
