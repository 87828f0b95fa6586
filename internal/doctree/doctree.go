// Package doctree describes the hierarchical document model the binder works on.
// A container holds blocks; a block is a paragraph of runs or a table; table
// cells are containers again, so tables may nest to any depth.
package doctree

// Kind tells blocks apart.
type Kind int

const (
	KindParagraph Kind = iota
	KindTable
)

// Container is anything holding an ordered block sequence: a document body
// or a table cell.
type Container interface {
	Blocks() []Block
}

// Block is a paragraph or a table.
type Block interface {
	Kind() Kind
}

// Paragraph is an ordered sequence of text runs.
type Paragraph interface {
	Block
	Runs() []Run
}

// Table is an ordered sequence of rows.
type Table interface {
	Block
	Rows() []Row
	// CloneRow deep-copies the row at index (the last row when index < 0)
	// and appends the copy after the current last row.
	CloneRow(index int) (Row, error)
}

// Row is an ordered sequence of cells.
type Row interface {
	Cells() []Cell
}

// Cell is a table cell. Text covers the cell's own paragraphs only, not the
// text of tables nested inside it.
type Cell interface {
	Container
	Text() string
	// SetText replaces the cell content with a single run of text, keeping
	// the formatting of the first paragraph and run.
	SetText(text string)
	// Clear removes all content but a single empty paragraph.
	Clear()
}

// Run is a span of text sharing one formatting.
type Run interface {
	Text() string
	SetText(text string)
	// InsertImage places an inline picture at the end of the run.
	InsertImage(p Picture) error
}

// Picture is an inline image sized in EMU.
type Picture struct {
	Data      []byte
	Format    string
	Name      string
	WidthEMU  int64
	HeightEMU int64
}
