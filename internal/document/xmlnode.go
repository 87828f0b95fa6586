package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type nodeKind int

const (
	rootNode nodeKind = iota
	elementNode
	textNode
	commentNode
	procInstNode
	directiveNode
)

// node is a lossless XML tree. Element names keep their literal prefix in
// name.Space so the part serializes back the way it was read.
type node struct {
	kind     nodeKind
	name     xml.Name
	attrs    []xml.Attr
	data     []byte
	parent   *node
	children []*node
}

// parseXML reads data into a tree rooted at a rootNode.
func parseXML(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &node{kind: rootNode}
	cur := root

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml: %w", err)
		}

		switch t := xml.CopyToken(tok).(type) {
		case xml.StartElement:
			n := &node{kind: elementNode, name: t.Name, attrs: t.Attr}
			cur.appendChild(n)
			cur = n
		case xml.EndElement:
			if cur.kind != elementNode || cur.name != t.Name {
				return nil, fmt.Errorf("unexpected closing tag %s", qualified(t.Name))
			}
			cur = cur.parent
		case xml.CharData:
			cur.appendChild(&node{kind: textNode, data: t})
		case xml.Comment:
			cur.appendChild(&node{kind: commentNode, data: t})
		case xml.ProcInst:
			cur.appendChild(&node{kind: procInstNode, name: xml.Name{Local: t.Target}, data: t.Inst})
		case xml.Directive:
			cur.appendChild(&node{kind: directiveNode, data: t})
		}
	}

	if cur != root {
		return nil, fmt.Errorf("unclosed element %s", qualified(cur.name))
	}
	return root, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func (n *node) appendChild(c *node) {
	c.parent = n
	n.children = append(n.children, c)
}

func (n *node) insertChild(i int, c *node) {
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

func (n *node) indexOf(c *node) int {
	for i, ch := range n.children {
		if ch == c {
			return i
		}
	}
	return -1
}

// firstElement returns the first element child, used for the document element.
func (n *node) firstElement() *node {
	for _, ch := range n.children {
		if ch.kind == elementNode {
			return ch
		}
	}
	return nil
}

func (n *node) attr(space, local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) setAttr(space, local, value string) {
	for i, a := range n.attrs {
		if a.Name.Space == space && a.Name.Local == local {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
}

// text concatenates all character data below n.
func (n *node) text() string {
	if n.kind == textNode {
		return string(n.data)
	}
	var buf bytes.Buffer
	for _, ch := range n.children {
		buf.WriteString(ch.text())
	}
	return buf.String()
}

func (n *node) clone() *node {
	c := &node{kind: n.kind, name: n.name}
	if n.attrs != nil {
		c.attrs = append([]xml.Attr(nil), n.attrs...)
	}
	if n.data != nil {
		c.data = append([]byte(nil), n.data...)
	}
	for _, ch := range n.children {
		c.appendChild(ch.clone())
	}
	return c
}

func (n *node) write(buf *bytes.Buffer) {
	switch n.kind {
	case rootNode:
		for _, ch := range n.children {
			ch.write(buf)
		}
	case textNode:
		escape(buf, string(n.data), false)
	case commentNode:
		buf.WriteString("<!--")
		buf.Write(n.data)
		buf.WriteString("-->")
	case procInstNode:
		buf.WriteString("<?")
		buf.WriteString(n.name.Local)
		if len(n.data) > 0 {
			buf.WriteByte(' ')
			buf.Write(n.data)
		}
		buf.WriteString("?>")
	case directiveNode:
		buf.WriteString("<!")
		buf.Write(n.data)
		buf.WriteByte('>')
	case elementNode:
		name := qualified(n.name)
		buf.WriteByte('<')
		buf.WriteString(name)
		for _, a := range n.attrs {
			buf.WriteByte(' ')
			buf.WriteString(qualified(a.Name))
			buf.WriteString(`="`)
			escape(buf, a.Value, true)
			buf.WriteByte('"')
		}
		if len(n.children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, ch := range n.children {
			ch.write(buf)
		}
		buf.WriteString("</")
		buf.WriteString(name)
		buf.WriteByte('>')
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")
)

// escape writes s as character data or as an attribute value. Whitespace is
// only encoded inside attributes.
func escape(buf *bytes.Buffer, s string, attr bool) {
	if attr {
		attrEscaper.WriteString(buf, s)
		return
	}
	textEscaper.WriteString(buf, s)
}
