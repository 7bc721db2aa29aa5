package ports

import (
	"io"

	"fam450/domain/sampling"
)

// TableExporter writes generated tables to an output format
type TableExporter interface {
	// Export writes the tables, in order, as one document
	Export(w io.Writer, tables ...*sampling.ResultTable) error

	// ContentType is the MIME type of the produced document
	ContentType() string

	// Extension is the file extension including the dot
	Extension() string
}
