package renderer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arpelle/glint/pkg/core"
)

// Row is one completed output scanline
type Row struct {
	X0     int
	Y      int
	Pixels []core.Tint
}

// RowSink consumes completed pixel rows in top-to-bottom order. The
// renderer hands a row off exactly once, as soon as it settles.
type RowSink interface {
	WriteRow(row Row) error
	Close() error
}

// SinkParams configures an image sink
type SinkParams struct {
	Gamma   float64 // 0 picks the format default (2.2 for byte formats)
	Quality int     // JPEG quality 0-100, 0 picks the default
	Alpha   bool    // Carry the alpha channel where the format allows
}

// OpenSink opens an image sink for the path, dispatching on the file
// extension: .png or no extension gives PNG, .jpg/.jpeg gives JPEG, and
// any other extension is an error.
func OpenSink(path string, width, height int, params SinkParams) (RowSink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return OpenJPEGSink(path, width, height, params)
	case ".png", "":
		return OpenPNGSink(path, width, height, params)
	default:
		return nil, fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}
