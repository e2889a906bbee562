// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit renders listings for the user.
package emit

import (
	"io"
	"strings"

	"github.com/pdiddy/carsearch/pkg/types"
)

// Emitter writes a full result set to w.
type Emitter interface {
	Emit(w io.Writer, listings []types.Listing) error
}

// Formats lists the supported output formats.
func Formats() []types.OutputFormat {
	return []types.OutputFormat{types.FormatText, types.FormatJSON, types.FormatCSV, types.FormatYAML}
}

// New returns the emitter for format. An empty format selects text. An
// unrecognized format also selects text, and ok is false so the caller
// can warn.
func New(format types.OutputFormat) (e Emitter, ok bool) {
	switch types.OutputFormat(strings.ToLower(strings.TrimSpace(string(format)))) {
	case types.FormatText, "":
		return TextEmitter{}, true
	case types.FormatJSON:
		return JSONEmitter{Indent: "  "}, true
	case types.FormatCSV:
		return CSVEmitter{}, true
	case types.FormatYAML:
		return YAMLEmitter{}, true
	}
	return TextEmitter{}, false
}
