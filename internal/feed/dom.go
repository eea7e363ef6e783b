package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NodeKind distinguishes the node types the walker cares about.
type NodeKind int

const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
)

// Node is a minimal DOM node. Element names and attribute names keep the
// literal prefix from the source ("itunes:duration"); nothing is resolved
// against namespace declarations.
type Node struct {
	Kind     NodeKind
	Name     string
	Attrs    []xml.Attr
	Data     string
	Children []*Node
}

// Attr returns the value of the attribute with the given qualified name,
// or nil when the attribute is absent.
func (n *Node) Attr(name string) *string {
	for _, a := range n.Attrs {
		if qualifiedName(a.Name) == name {
			v := a.Value
			return &v
		}
	}
	return nil
}

// TextContent concatenates all descendant text, like DOM textContent.
func (n *Node) TextContent() string {
	if n.Kind == TextNode {
		return n.Data
	}
	var sb strings.Builder
	n.appendText(&sb)
	return sb.String()
}

func (n *Node) appendText(sb *strings.Builder) {
	for _, c := range n.Children {
		if c.Kind == TextNode {
			sb.WriteString(c.Data)
			continue
		}
		c.appendText(sb)
	}
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// decodeBOM strips a leading byte-order mark. UTF-16 input is transcoded to
// UTF-8 and reported as such, so the encoding named by the XML declaration
// no longer applies to the returned bytes.
func decodeBOM(data []byte) ([]byte, bool, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return data[len(utf8BOM):], false, nil
	case bytes.HasPrefix(data, utf16LEBOM), bytes.HasPrefix(data, utf16BEBOM):
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		if err != nil {
			return nil, false, fmt.Errorf("decoding UTF-16 document: %w", err)
		}
		return out, true, nil
	default:
		return data, false, nil
	}
}

// BuildDocument reads r to the end and returns the document node. A leading
// byte-order mark is honoured. Any syntax error, mismatched tag, missing or
// repeated root element fails the whole build.
func BuildDocument(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data, transcoded, err := decodeBOM(data)
	if err != nil {
		return nil, err
	}
	return buildTree(bytes.NewReader(data), transcoded)
}

// buildTree tokenizes r into a Node tree. When utf8Only is set the bytes are
// already UTF-8 and a declared encoding is ignored.
func buildTree(r io.Reader, utf8Only bool) (*Node, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	if utf8Only {
		d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	}

	doc := &Node{Kind: DocumentNode}
	stack := []*Node{doc}
	sawRoot := false

	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		parent := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 1 {
				if sawRoot {
					line, _ := d.InputPos()
					return nil, fmt.Errorf("line %d: multiple root elements", line)
				}
				sawRoot = true
			}
			el := &Node{
				Kind:  ElementNode,
				Name:  qualifiedName(t.Name),
				Attrs: append([]xml.Attr(nil), t.Attr...),
			}
			parent.Children = append(parent.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 1 || parent.Name != name {
				return nil, fmt.Errorf("unexpected end element </%s>", name)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 1 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, errors.New("text outside root element")
				}
				continue
			}
			parent.Children = append(parent.Children, &Node{Kind: TextNode, Data: string(t)})
		}
	}

	if len(stack) > 1 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Name)
	}
	if !sawRoot {
		return nil, errors.New("no root element")
	}
	return doc, nil
}
