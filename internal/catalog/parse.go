package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// recordTag is the element holding one product entry.
const recordTag = "record"

// xmlNode is a generic element tree; the lookup schema is matched by local
// name at any depth.
type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// textContent returns the node's text followed by its descendants' text.
func (n *xmlNode) textContent() string {
	if len(n.Children) == 0 {
		return n.Text
	}
	var b strings.Builder
	b.WriteString(n.Text)
	for i := range n.Children {
		b.WriteString(n.Children[i].textContent())
	}
	return b.String()
}

// find returns the first element named local in pre-order, including n.
func (n *xmlNode) find(local string) *xmlNode {
	if n.XMLName.Local == local {
		return n
	}
	return n.findDescendant(local)
}

// findDescendant is find excluding n itself.
func (n *xmlNode) findDescendant(local string) *xmlNode {
	for i := range n.Children {
		if found := n.Children[i].find(local); found != nil {
			return found
		}
	}
	return nil
}

// charsetReader decodes non-UTF-8 responses using the IANA registry.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Parse extracts the first record of a lookup response.
//
// A body that is not XML is a transport error; a well-formed body without
// records is ErrCodeNotFound.
func Parse(body []byte) (*Product, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charsetReader

	var root xmlNode
	if err := dec.Decode(&root); err != nil {
		return nil, &Error{Code: ErrCodeTransport, Err: fmt.Errorf("parse response: %w", err)}
	}

	record := root.find(recordTag)
	if record == nil {
		return nil, &Error{Code: ErrCodeNotFound, Err: fmt.Errorf("0 products in the response")}
	}

	p := &Product{}
	for _, f := range Fields {
		el := record.findDescendant(string(f))
		if el == nil {
			continue
		}
		value := strings.TrimSpace(el.textContent())
		if f == FieldPrice && value != "" {
			normalized, err := NormalizePrice(value)
			if err != nil {
				slog.Warn("product price unparsable", "price", value, "error", err)
				continue
			}
			value = normalized
		}
		p.set(f, value)
	}
	return p, nil
}
