package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const bodyTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
	`<w:document xmlns:w="` + nsWord + `" xmlns:r="` + nsRel + `"><w:body>%s<w:sectPr/></w:body></w:document>`

// New returns an empty single-section document.
func New() *Document {
	d, err := FromBody("")
	if err != nil {
		// the built-in skeleton always parses
		panic(err)
	}
	return d
}

// NewMessage returns a document whose body is a single paragraph of text.
func NewMessage(text string) *Document {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))
	d, err := FromBody(`<w:p><w:r><w:t xml:space="preserve">` + escaped.String() + `</w:t></w:r></w:p>`)
	if err != nil {
		panic(err)
	}
	return d
}

// FromBody builds a document around raw WordprocessingML body content using
// the w and r prefixes.
func FromBody(bodyXML string) (*Document, error) {
	types, err := marshalPart(&contentTypes{
		Defaults: []contentDefault{
			{Extension: "rels", ContentType: relsType},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []contentOverride{
			{PartName: "/" + defaultMainPart, ContentType: mainType},
		},
	})
	if err != nil {
		return nil, err
	}
	pkgRels, err := marshalPart(&relationships{
		Items: []relationship{{ID: "rId1", Type: relTypeOfficeDocument, Target: defaultMainPart}},
	})
	if err != nil {
		return nil, err
	}

	parts := map[string][]byte{
		contentTypesPart: types,
		packageRelsPart:  pkgRels,
		defaultMainPart:  []byte(fmt.Sprintf(bodyTemplate, bodyXML)),
	}
	return fromParts(parts, []string{contentTypesPart, packageRelsPart, defaultMainPart})
}
