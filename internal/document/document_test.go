package document

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/filmdocs/internal/doctree"
)

const nestedBody = `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>${title}</w:t></w:r></w:p>` +
	`<w:tbl><w:tr><w:tc><w:tcPr><w:tcW w:w="2000"/></w:tcPr><w:p><w:r><w:t>outer</w:t></w:r></w:p>` +
	`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Metascore</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>98</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:rPr><w:i/></w:rPr><w:t>IMDb</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>8.3</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
	`<w:p/></w:tc></w:tr></w:tbl>`

func nested(t *testing.T) *Document {
	t.Helper()
	d, err := FromBody(nestedBody)
	require.NoError(t, err)
	return d
}

func TestBlocksAndNestedTables(t *testing.T) {
	d := nested(t)
	blocks := d.Body().Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, doctree.KindParagraph, blocks[0].Kind())
	assert.Equal(t, doctree.KindTable, blocks[1].Kind())

	outer := blocks[1].(doctree.Table)
	cell := outer.Rows()[0].Cells()[0]
	assert.Equal(t, "outer\n", cell.Text(), "nested table text is not part of the cell text")

	inner := cell.Blocks()[1].(doctree.Table)
	assert.Len(t, inner.Rows(), 2)
	assert.Equal(t, "Metascore", inner.Rows()[0].Cells()[0].Text())
}

func TestRunSetTextKeepsFormatting(t *testing.T) {
	d := nested(t)
	p := d.Body().Blocks()[0].(doctree.Paragraph)
	r := p.Runs()[0]
	r.SetText("  Metropolis & co  ")

	out, ok := d.Part("word/document.xml")
	require.True(t, ok)
	assert.Contains(t, string(out), `<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">  Metropolis &amp; co  </w:t>`)
	assert.Equal(t, "  Metropolis & co  ", r.Text())
}

func TestCloneRowAppendsStrippableCopy(t *testing.T) {
	d := nested(t)
	outer := d.Body().Blocks()[1].(doctree.Table)
	inner := outer.Rows()[0].Cells()[0].Blocks()[1].(doctree.Table)

	clone, err := inner.CloneRow(-1)
	require.NoError(t, err)
	require.Len(t, inner.Rows(), 3)
	assert.Equal(t, "IMDb", inner.Rows()[2].Cells()[0].Text())

	cells := clone.Cells()
	cells[0].SetText("Rotten Tomatoes")
	cells[1].Clear()
	assert.Equal(t, "Rotten Tomatoes", inner.Rows()[2].Cells()[0].Text())
	assert.Equal(t, "", inner.Rows()[2].Cells()[1].Text())
	assert.Equal(t, "IMDb", inner.Rows()[1].Cells()[0].Text(), "template row untouched")

	out, _ := d.Part("word/document.xml")
	assert.Contains(t, string(out), `<w:rPr><w:i/></w:rPr><w:t xml:space="preserve">Rotten Tomatoes</w:t>`)

	_, err = inner.CloneRow(7)
	assert.Error(t, err)
}

func TestInsertImageAddsPartsAndRelationship(t *testing.T) {
	d := nested(t)
	r := d.Body().Blocks()[0].(doctree.Paragraph).Runs()[0]
	require.NoError(t, r.InsertImage(doctree.Picture{
		Data: []byte("\x89PNG fake"), Format: "png", Name: "Poster", WidthEMU: 9525 * 10, HeightEMU: 9525 * 20,
	}))

	data, err := d.Bytes()
	require.NoError(t, err)
	reopened, err := Open(data)
	require.NoError(t, err)

	media, ok := reopened.Part("word/media/image1.png")
	require.True(t, ok)
	assert.Equal(t, []byte("\x89PNG fake"), media)

	rels, _ := reopened.Part("word/_rels/document.xml.rels")
	assert.Contains(t, string(rels), `Target="media/image1.png"`)
	types, _ := reopened.Part("[Content_Types].xml")
	assert.Contains(t, string(types), `Extension="png"`)

	main, _ := reopened.Part("word/document.xml")
	assert.Contains(t, string(main), `<wp:extent cx="95250" cy="190500"/>`)
	assert.Contains(t, string(main), `r:embed="rId1"`)
	assert.Contains(t, string(main), `name="Poster"`)
	assert.Contains(t, string(main), `xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`)

	assert.Error(t, r.InsertImage(doctree.Picture{Format: "svg"}))
}

func TestInsertImageWebP(t *testing.T) {
	d := nested(t)
	r := d.Body().Blocks()[0].(doctree.Paragraph).Runs()[0]
	require.NoError(t, r.InsertImage(doctree.Picture{
		Data: []byte("RIFF fake"), Format: "webp", Name: "Poster", WidthEMU: 9525, HeightEMU: 9525,
	}))

	data, err := d.Bytes()
	require.NoError(t, err)
	reopened, err := Open(data)
	require.NoError(t, err)

	_, ok := reopened.Part("word/media/image1.webp")
	assert.True(t, ok)
	types, _ := reopened.Part("[Content_Types].xml")
	assert.Contains(t, string(types), `ContentType="image/webp"`)
}

func TestRoundTripKeepsUntouchedParts(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Hi</w:t></w:r></w:p><!-- note --></w:body></w:document>`},
		{"word/styles.xml", `<styles>keep &amp; me</styles>`},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	d, err := Open(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Hi", d.Text())

	out, err := d.Bytes()
	require.NoError(t, err)
	again, err := Open(out)
	require.NoError(t, err)

	styles, ok := again.Part("word/styles.xml")
	require.True(t, ok)
	assert.Equal(t, `<styles>keep &amp; me</styles>`, string(styles))

	main, _ := again.Part("word/document.xml")
	assert.True(t, strings.HasPrefix(string(main), `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`))
	assert.Contains(t, string(main), `<!-- note -->`)
	assert.Equal(t, []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"}, again.PartNames())
}

func TestDefaultNamespaceDocument(t *testing.T) {
	d, err := fromParts(map[string][]byte{
		contentTypesPart: []byte(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`),
		defaultMainPart:  []byte(`<document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><body><p><r><t>plain</t></r></p></body></document>`),
	}, []string{contentTypesPart, defaultMainPart})
	require.NoError(t, err)
	assert.Equal(t, "plain", d.Text())
}

func TestNewMessage(t *testing.T) {
	d := NewMessage("Failed to gather film data <502>")
	assert.Equal(t, "Failed to gather film data <502>", d.Text())

	data, err := d.Bytes()
	require.NoError(t, err)
	_, err = Open(data)
	assert.NoError(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("not a zip"))
	assert.Error(t, err)

	_, err = FromBody(`<w:p>`)
	assert.Error(t, err)
}
