// Package document reads and writes DOCX packages and exposes their body as
// a doctree. Only the main document part is parsed; every other part is kept
// as raw bytes and written back unchanged.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/amaumene/filmdocs/internal/doctree"
)

// WordprocessingML and DrawingML namespaces
const (
	nsWord     = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWPDraw   = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsDrawing  = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPicture  = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	mainType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	relsType   = "application/vnd.openxmlformats-package.relationships+xml"
	mediaDir   = "media"
	imageStem  = "image"
	docPrStart = 1
)

// Document is one DOCX package. It is not safe for concurrent use.
type Document struct {
	parts    map[string][]byte
	order    []string
	mainPart string
	relsPart string

	root *node
	body *node
	rels *relationships
	ct   *contentTypes

	// namespace prefixes as declared by the main part
	w, r, wp, a, pic string

	nextDocPr int
}

// Load reads a DOCX file from disk.
func Load(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Open(data)
}

// Open parses a DOCX package held in memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open document package: %w", err)
	}

	parts := make(map[string][]byte, len(zr.File))
	order := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", f.Name, err)
		}
		parts[f.Name] = content
		order = append(order, f.Name)
	}

	return fromParts(parts, order)
}

func fromParts(parts map[string][]byte, order []string) (*Document, error) {
	d := &Document{parts: parts, order: order, mainPart: defaultMainPart}

	raw, ok := parts[contentTypesPart]
	if !ok {
		return nil, fmt.Errorf("document package has no %s", contentTypesPart)
	}
	d.ct = &contentTypes{}
	if err := xml.Unmarshal(raw, d.ct); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}

	if raw, ok := parts[packageRelsPart]; ok {
		var pkgRels relationships
		if err := xml.Unmarshal(raw, &pkgRels); err != nil {
			return nil, fmt.Errorf("failed to parse package relationships: %w", err)
		}
		if rel, ok := pkgRels.byType(relTypeOfficeDocument); ok {
			d.mainPart = strings.TrimPrefix(rel.Target, "/")
		}
	}

	main, ok := parts[d.mainPart]
	if !ok {
		return nil, fmt.Errorf("document package has no main part %s", d.mainPart)
	}
	root, err := parseXML(main)
	if err != nil {
		return nil, fmt.Errorf("failed to parse main part: %w", err)
	}
	d.root = root

	docElem := root.firstElement()
	if docElem == nil {
		return nil, fmt.Errorf("main part %s is empty", d.mainPart)
	}
	d.w = d.prefixFor(docElem, nsWord, "w")
	for _, ch := range docElem.children {
		if d.is(ch, "body") {
			d.body = ch
			break
		}
	}
	if d.body == nil {
		return nil, fmt.Errorf("main part %s has no body", d.mainPart)
	}
	d.r = d.prefixFor(docElem, nsRel, "r")
	d.wp = d.prefixFor(docElem, nsWPDraw, "wp")
	d.a = d.prefixFor(docElem, nsDrawing, "a")
	d.pic = d.prefixFor(docElem, nsPicture, "pic")

	d.relsPart = path.Join(path.Dir(d.mainPart), "_rels", path.Base(d.mainPart)+".rels")
	d.rels = &relationships{}
	if raw, ok := parts[d.relsPart]; ok {
		if err := xml.Unmarshal(raw, d.rels); err != nil {
			return nil, fmt.Errorf("failed to parse document relationships: %w", err)
		}
	}

	d.nextDocPr = d.maxDocPr(d.root) + 1
	return d, nil
}

// prefixFor returns the prefix bound to ns on elem, declaring preferred (or a
// free variant of it) when the namespace is not declared yet.
func (d *Document) prefixFor(elem *node, ns, preferred string) string {
	for _, a := range elem.attrs {
		if a.Value != ns {
			continue
		}
		if a.Name.Space == "xmlns" {
			return a.Name.Local
		}
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			return ""
		}
	}
	prefix := preferred
	for i := 1; ; i++ {
		if _, taken := elem.attr("xmlns", prefix); !taken {
			break
		}
		prefix = preferred + strconv.Itoa(i)
	}
	elem.setAttr("xmlns", prefix, ns)
	return prefix
}

func (d *Document) maxDocPr(n *node) int {
	highest := docPrStart - 1
	if n.kind == elementNode && n.name.Local == "docPr" {
		if v, ok := n.attr("", "id"); ok {
			if id, err := strconv.Atoi(v); err == nil && id > highest {
				highest = id
			}
		}
	}
	for _, ch := range n.children {
		highest = max(highest, d.maxDocPr(ch))
	}
	return highest
}

// Body returns the document body as a doctree container.
func (d *Document) Body() doctree.Container {
	return &container{d: d, n: d.body}
}

// Text returns the visible text of the body, one line per paragraph in
// document order, descending into tables.
func (d *Document) Text() string {
	var lines []string
	var walk func(c doctree.Container)
	walk = func(c doctree.Container) {
		for _, b := range c.Blocks() {
			switch blk := b.(type) {
			case doctree.Paragraph:
				lines = append(lines, paragraphText(blk))
			case doctree.Table:
				for _, row := range blk.Rows() {
					for _, cell := range row.Cells() {
						walk(cell)
					}
				}
			}
		}
	}
	walk(d.Body())
	return strings.Join(lines, "\n")
}

// Part returns the raw bytes of a package part as they will be written.
func (d *Document) Part(name string) ([]byte, bool) {
	switch name {
	case d.mainPart:
		var buf bytes.Buffer
		d.root.write(&buf)
		return buf.Bytes(), true
	case d.relsPart:
		out, err := marshalPart(d.rels)
		return out, err == nil
	case contentTypesPart:
		out, err := marshalPart(d.ct)
		return out, err == nil
	}
	data, ok := d.parts[name]
	return data, ok
}

// PartNames lists the package parts in write order.
func (d *Document) PartNames() []string {
	names := append([]string(nil), d.order...)
	if _, ok := d.parts[d.relsPart]; !ok && len(d.rels.Items) > 0 {
		names = append(names, d.relsPart)
	}
	return names
}

// Bytes serializes the package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the package as a zip archive.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range d.PartNames() {
		data, ok := d.Part(name)
		if !ok {
			return 0, fmt.Errorf("failed to serialize part %s", name)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return 0, fmt.Errorf("failed to create part %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return 0, fmt.Errorf("failed to write part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish document package: %w", err)
	}
	return buf.WriteTo(w)
}

func (d *Document) is(n *node, local string) bool {
	return n.kind == elementNode && n.name.Space == d.w && n.name.Local == local
}

func (d *Document) elem(local string) *node {
	return &node{kind: elementNode, name: xml.Name{Space: d.w, Local: local}}
}

// child returns the first w:local child of n.
func (d *Document) child(n *node, local string) *node {
	for _, ch := range n.children {
		if d.is(ch, local) {
			return ch
		}
	}
	return nil
}

// addImage stores the picture bytes as a media part and returns its
// relationship id.
func (d *Document) addImage(p doctree.Picture) (string, error) {
	ext, contentType, ok := mediaType(p.Format)
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", p.Format)
	}

	dir := path.Dir(d.mainPart)
	var target, name string
	for i := 1; ; i++ {
		target = fmt.Sprintf("%s/%s%d.%s", mediaDir, imageStem, i, ext)
		name = path.Join(dir, target)
		if _, taken := d.parts[name]; !taken {
			break
		}
	}

	d.parts[name] = append([]byte(nil), p.Data...)
	d.order = append(d.order, name)
	d.ct.ensureDefault(ext, contentType)
	d.ct.ensureDefault("rels", relsType)
	return d.rels.add(relTypeImage, target), nil
}

func mediaType(format string) (ext, contentType string, ok bool) {
	switch strings.ToLower(format) {
	case "png":
		return "png", "image/png", true
	case "jpeg", "jpg":
		return "jpeg", "image/jpeg", true
	case "gif":
		return "gif", "image/gif", true
	case "bmp":
		return "bmp", "image/bmp", true
	case "tiff", "tif":
		return "tiff", "image/tiff", true
	case "webp":
		return "webp", "image/webp", true
	}
	return "", "", false
}

const drawingTemplate = `<{w}:drawing><{wp}:inline distT="0" distB="0" distL="0" distR="0">` +
	`<{wp}:extent cx="%[1]d" cy="%[2]d"/><{wp}:effectExtent l="0" t="0" r="0" b="0"/>` +
	`<{wp}:docPr id="%[3]d" name=""/><{wp}:cNvGraphicFramePr><{a}:graphicFrameLocks noChangeAspect="1"/></{wp}:cNvGraphicFramePr>` +
	`<{a}:graphic><{a}:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<{pic}:pic><{pic}:nvPicPr><{pic}:cNvPr id="0" name=""/><{pic}:cNvPicPr/></{pic}:nvPicPr>` +
	`<{pic}:blipFill><{a}:blip {r}:embed="%[4]s"/><{a}:stretch><{a}:fillRect/></{a}:stretch></{pic}:blipFill>` +
	`<{pic}:spPr><{a}:xfrm><{a}:off x="0" y="0"/><{a}:ext cx="%[1]d" cy="%[2]d"/></{a}:xfrm>` +
	`<{a}:prstGeom prst="rect"><{a}:avLst/></{a}:prstGeom></{pic}:spPr></{pic}:pic>` +
	`</{a}:graphicData></{a}:graphic></{wp}:inline></{w}:drawing>`

// drawing builds an inline w:drawing element for an embedded image.
func (d *Document) drawing(relID string, p doctree.Picture) (*node, error) {
	markup := strings.NewReplacer(
		"{w}:", prefixed(d.w), "{wp}:", prefixed(d.wp), "{a}:", prefixed(d.a),
		"{pic}:", prefixed(d.pic), "{r}:", prefixed(d.r),
	).Replace(drawingTemplate)

	id := d.nextDocPr
	d.nextDocPr++
	frag, err := parseXML([]byte(fmt.Sprintf(markup, p.WidthEMU, p.HeightEMU, id, relID)))
	if err != nil {
		return nil, err
	}
	drawing := frag.firstElement()
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("Picture %d", id)
	}
	setAttrDeep(drawing, "docPr", name)
	setAttrDeep(drawing, "cNvPr", name)
	return drawing, nil
}

func prefixed(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + ":"
}

// setAttrDeep sets the name attribute on every element called local below n.
func setAttrDeep(n *node, local, value string) {
	if n.kind == elementNode && n.name.Local == local {
		n.setAttr("", "name", value)
	}
	for _, ch := range n.children {
		setAttrDeep(ch, local, value)
	}
}
