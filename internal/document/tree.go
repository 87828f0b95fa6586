package document

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/amaumene/filmdocs/internal/doctree"
)

// Elements that only wrap content and are looked through.
var (
	runWrappers   = []string{"hyperlink", "ins", "smartTag", "fldSimple", "customXml"}
	blockWrappers = []string{"customXml"}
)

type container struct {
	d *Document
	n *node
}

func (c *container) Blocks() []doctree.Block {
	return c.d.blocks(c.n)
}

func (d *Document) blocks(parent *node) []doctree.Block {
	var out []doctree.Block
	for _, ch := range parent.children {
		switch {
		case d.is(ch, "p"):
			out = append(out, &paragraph{d: d, n: ch})
		case d.is(ch, "tbl"):
			out = append(out, &table{d: d, n: ch})
		case d.is(ch, "sdt"):
			if content := d.child(ch, "sdtContent"); content != nil {
				out = append(out, d.blocks(content)...)
			}
		case d.isAny(ch, blockWrappers):
			out = append(out, d.blocks(ch)...)
		}
	}
	return out
}

func (d *Document) isAny(n *node, locals []string) bool {
	for _, l := range locals {
		if d.is(n, l) {
			return true
		}
	}
	return false
}

// collect returns the w:local descendants of parent, looking through sdt
// and the given wrapper elements but not into other content.
func (d *Document) collect(parent *node, local string, wrappers []string) []*node {
	var out []*node
	for _, ch := range parent.children {
		switch {
		case d.is(ch, local):
			out = append(out, ch)
		case d.is(ch, "sdt"):
			if content := d.child(ch, "sdtContent"); content != nil {
				out = append(out, d.collect(content, local, wrappers)...)
			}
		case d.isAny(ch, wrappers):
			out = append(out, d.collect(ch, local, wrappers)...)
		}
	}
	return out
}

type paragraph struct {
	d *Document
	n *node
}

func (p *paragraph) Kind() doctree.Kind { return doctree.KindParagraph }

func (p *paragraph) Runs() []doctree.Run {
	nodes := p.d.collect(p.n, "r", runWrappers)
	runs := make([]doctree.Run, 0, len(nodes))
	for _, n := range nodes {
		runs = append(runs, &run{d: p.d, n: n})
	}
	return runs
}

func paragraphText(p doctree.Paragraph) string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

type table struct {
	d *Document
	n *node
}

func (t *table) Kind() doctree.Kind { return doctree.KindTable }

func (t *table) rowNodes() []*node {
	return t.d.collect(t.n, "tr", blockWrappers)
}

func (t *table) Rows() []doctree.Row {
	nodes := t.rowNodes()
	rows := make([]doctree.Row, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, &row{d: t.d, n: n})
	}
	return rows
}

func (t *table) CloneRow(index int) (doctree.Row, error) {
	nodes := t.rowNodes()
	if len(nodes) == 0 {
		return nil, fmt.Errorf("table has no rows to clone")
	}
	if index < 0 {
		index = len(nodes) - 1
	}
	if index >= len(nodes) {
		return nil, fmt.Errorf("row index %d out of range (%d rows)", index, len(nodes))
	}

	clone := nodes[index].clone()
	last := nodes[len(nodes)-1]
	parent := last.parent
	parent.insertChild(parent.indexOf(last)+1, clone)
	return &row{d: t.d, n: clone}, nil
}

type row struct {
	d *Document
	n *node
}

func (r *row) Cells() []doctree.Cell {
	nodes := r.d.collect(r.n, "tc", blockWrappers)
	cells := make([]doctree.Cell, 0, len(nodes))
	for _, n := range nodes {
		cells = append(cells, &cell{container: container{d: r.d, n: n}})
	}
	return cells
}

type cell struct {
	container
}

func (c *cell) Text() string {
	var lines []string
	for _, b := range c.Blocks() {
		if p, ok := b.(doctree.Paragraph); ok {
			lines = append(lines, paragraphText(p))
		}
	}
	return strings.Join(lines, "\n")
}

func (c *cell) Clear() {
	c.reset()
}

func (c *cell) SetText(text string) {
	r := &run{d: c.d, n: c.reset()}
	r.SetText(text)
}

// reset drops every block of the cell, leaving one paragraph with one empty
// run that carry the formatting of the first paragraph and run. It returns
// that run.
func (c *cell) reset() *node {
	d := c.d
	var pPr, rPr *node
	if paras := d.collect(c.n, "p", blockWrappers); len(paras) > 0 {
		pPr = d.child(paras[0], "pPr")
		if runs := d.collect(paras[0], "r", runWrappers); len(runs) > 0 {
			rPr = d.child(runs[0], "rPr")
		}
	}

	kept := c.n.children[:0:0]
	for _, ch := range c.n.children {
		if d.is(ch, "tcPr") {
			kept = append(kept, ch)
		}
	}
	c.n.children = kept

	p := d.elem("p")
	if pPr != nil {
		p.appendChild(pPr.clone())
	}
	r := d.elem("r")
	if rPr != nil {
		r.appendChild(rPr.clone())
	}
	p.appendChild(r)
	c.n.appendChild(p)
	return r
}

type run struct {
	d *Document
	n *node
}

func (r *run) Text() string {
	var sb strings.Builder
	for _, ch := range r.n.children {
		if r.d.is(ch, "t") {
			sb.WriteString(ch.text())
		}
	}
	return sb.String()
}

// SetText puts text into the first w:t of the run and drops the others.
func (r *run) SetText(text string) {
	t := r.d.elem("t")
	t.attrs = []xml.Attr{{Name: xml.Name{Space: "xml", Local: "space"}, Value: "preserve"}}
	if text != "" {
		t.appendChild(&node{kind: textNode, data: []byte(text)})
	}

	placed := false
	children := make([]*node, 0, len(r.n.children)+1)
	for _, ch := range r.n.children {
		if !r.d.is(ch, "t") {
			children = append(children, ch)
			continue
		}
		if !placed {
			children = append(children, t)
			placed = true
		}
	}
	if !placed {
		children = append(children, t)
	}

	r.n.children = nil
	for _, ch := range children {
		r.n.appendChild(ch)
	}
}

func (r *run) InsertImage(p doctree.Picture) error {
	relID, err := r.d.addImage(p)
	if err != nil {
		return err
	}
	drawing, err := r.d.drawing(relID, p)
	if err != nil {
		return fmt.Errorf("failed to build drawing: %w", err)
	}
	r.n.appendChild(drawing)
	return nil
}
