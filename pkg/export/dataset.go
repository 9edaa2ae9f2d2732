package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset, title string) ([]byte, error)
	Extension() string
}

// NewRenderer returns the renderer for a report format ("csv" or "pdf").
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return NewCSVExporter(), nil
	case "pdf":
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
