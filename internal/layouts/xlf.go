package layouts

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-signage/pkg/interfaces"
	"golang.org/x/net/html/charset"
)

// XLF element and attribute names.
const (
	xlfRootElement    = "layout"
	xlfRegionElement  = "region"
	xlfMediaElement   = "media"
	xlfOptionsElement = "options"
	xlfRawElement     = "raw"

	xlfAttrSchemaVersion = "schemaVersion"
	xlfAttrWidth         = "width"
	xlfAttrHeight        = "height"
	xlfAttrBackground    = "bgcolor"
	xlfAttrID            = "id"
	xlfAttrRegionOwner   = "userId"
	xlfAttrName          = "name"
	xlfAttrTop           = "top"
	xlfAttrLeft          = "left"
	xlfAttrType          = "type"
	xlfAttrMediaOwner    = "userid"
	xlfAttrDuration      = "duration"
)

// XLFParser converts legacy XLF documents into a layout graph. It holds no
// mutable state and is safe for concurrent use.
type XLFParser struct {
	modules interfaces.ModuleResolver
}

// NewXLFParser returns a parser that consults modules for per-widget
// flattening rules.
func NewXLFParser(modules interfaces.ModuleResolver) *XLFParser {
	return &XLFParser{modules: modules}
}

// Parse builds a layout from document. Media elements whose module type is
// unknown to the resolver are dropped. The returned layout carries no
// identifiers and no tags.
func (p *XLFParser) Parse(document []byte) (*Layout, error) {
	if p == nil || p.modules == nil {
		return nil, ErrModuleResolverRequired
	}

	root, err := decodeXLFTree(document)
	if err != nil {
		return nil, err
	}
	if root.name != xlfRootElement {
		return nil, malformed(fmt.Sprintf("root element <%s>, want <%s>", root.name, xlfRootElement), nil)
	}

	layout := &Layout{Tags: []string{}}
	if layout.SchemaVersion, err = intAttr(root, xlfAttrSchemaVersion); err != nil {
		return nil, err
	}
	if layout.Width, err = floatAttr(root, xlfAttrWidth); err != nil {
		return nil, err
	}
	if layout.Height, err = floatAttr(root, xlfAttrHeight); err != nil {
		return nil, err
	}
	layout.BackgroundColor = root.attrs[xlfAttrBackground]

	regionNodes := root.descendants(xlfRegionElement)
	mediaByRegion := indexMediaByRegion(regionNodes)

	for _, regionNode := range regionNodes {
		region, err := parseRegion(regionNode)
		if err != nil {
			return nil, err
		}
		playlist := &Playlist{}

		for _, mediaNode := range mediaByRegion[regionKey(regionNode)] {
			widget, err := p.parseWidget(mediaNode)
			if err != nil {
				return nil, err
			}
			if widget == nil {
				continue
			}
			playlist.AddWidget(widget)
		}

		region.AddPlaylist(playlist)
		layout.AddRegion(region)
	}

	return layout, nil
}

func parseRegion(node *xlfNode) (*Region, error) {
	var err error
	region := &Region{Name: node.attrs[xlfAttrName]}
	if region.OwnerID, err = intAttr(node, xlfAttrRegionOwner); err != nil {
		return nil, err
	}
	if region.Width, err = floatAttr(node, xlfAttrWidth); err != nil {
		return nil, err
	}
	if region.Height, err = floatAttr(node, xlfAttrHeight); err != nil {
		return nil, err
	}
	if region.Top, err = floatAttr(node, xlfAttrTop); err != nil {
		return nil, err
	}
	if region.Left, err = floatAttr(node, xlfAttrLeft); err != nil {
		return nil, err
	}
	return region, nil
}

// parseWidget returns nil without error when the module type is unknown.
func (p *XLFParser) parseWidget(node *xlfNode) (*Widget, error) {
	var err error
	widget := &Widget{Type: node.attrs[xlfAttrType]}
	if widget.OwnerID, err = intAttr(node, xlfAttrMediaOwner); err != nil {
		return nil, err
	}
	if widget.Duration, err = intAttr(node, xlfAttrDuration); err != nil {
		return nil, err
	}

	capabilities, ok := p.modules.Capabilities(widget.Type)
	if !ok {
		return nil, nil
	}
	if !capabilities.RegionSpecific {
		widget.MediaIDs = []string{node.attrs[xlfAttrID]}
	}

	for _, options := range node.childElements(xlfOptionsElement) {
		for _, option := range options.children {
			widget.AddOption(OptionKindAttribute, option.name, option.text.String())
		}
	}
	for _, raw := range node.childElements(xlfRawElement) {
		for _, option := range raw.children {
			widget.AddOption(OptionKindCData, option.name, option.rawContent())
		}
	}
	return widget, nil
}

// LegacyMediaIDs returns the id of every media element in document, in
// document order. It returns nil when document cannot be parsed.
func LegacyMediaIDs(document string) []string {
	if strings.TrimSpace(document) == "" {
		return nil
	}
	root, err := decodeXLFTree([]byte(document))
	if err != nil || root.name != xlfRootElement {
		return nil
	}
	var ids []string
	for _, node := range root.descendants(xlfMediaElement) {
		if id := node.attrs[xlfAttrID]; id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// indexMediaByRegion groups the media children of every region under the
// region's declared id, in document order. Regions sharing an id share
// their media; regions without an id only own their own children.
func indexMediaByRegion(regions []*xlfNode) map[any][]*xlfNode {
	index := make(map[any][]*xlfNode, len(regions))
	for _, region := range regions {
		key := regionKey(region)
		index[key] = append(index[key], region.childElements(xlfMediaElement)...)
	}
	return index
}

func regionKey(node *xlfNode) any {
	if id, ok := node.attrs[xlfAttrID]; ok {
		return id
	}
	return node
}

func floatAttr(node *xlfNode, name string) (float64, error) {
	raw := strings.TrimSpace(node.attrs[name])
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, malformed(fmt.Sprintf("attribute %s=%q on <%s>", name, raw, node.name), err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, malformed(fmt.Sprintf("attribute %s=%q on <%s> is not finite", name, raw, node.name), nil)
	}
	return value, nil
}

func intAttr(node *xlfNode, name string) (int, error) {
	raw := strings.TrimSpace(node.attrs[name])
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, malformed(fmt.Sprintf("attribute %s=%q on <%s>", name, raw, node.name), err)
	}
	return value, nil
}

// xlfNode is the minimal element tree the parser needs: attributes, element
// children, the concatenated text of all descendants, and the raw inner
// bytes of the element.
type xlfNode struct {
	name     string
	attrs    map[string]string
	children []*xlfNode
	text     strings.Builder
	inner    []byte
}

func (n *xlfNode) childElements(name string) []*xlfNode {
	var out []*xlfNode
	for _, child := range n.children {
		if child.name == name {
			out = append(out, child)
		}
	}
	return out
}

// descendants returns every element below n with the given name in
// document order.
func (n *xlfNode) descendants(name string) []*xlfNode {
	var out []*xlfNode
	var walk func(*xlfNode)
	walk = func(node *xlfNode) {
		for _, child := range node.children {
			if child.name == name {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// rawContent returns the text of an element, or its inner markup verbatim
// when it contains child elements.
func (n *xlfNode) rawContent() string {
	if len(n.children) > 0 {
		return string(n.inner)
	}
	return n.text.String()
}

func decodeXLFTree(document []byte) (*xlfNode, error) {
	if len(bytes.TrimSpace(document)) == 0 {
		return nil, malformed("empty document", nil)
	}

	document, err := toUTF8(document)
	if err != nil {
		return nil, err
	}

	decoder := xml.NewDecoder(bytes.NewReader(document))
	decoder.Strict = true
	// document is UTF-8 at this point whatever its declaration says.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		root       *xlfNode
		stack      []*xlfNode
		innerStart []int64
	)
	for {
		offset := decoder.InputOffset()
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("not well-formed", err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, malformed("multiple root elements", nil)
			}
			node := &xlfNode{name: tok.Name.Local, attrs: make(map[string]string, len(tok.Attr))}
			for _, attr := range tok.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
					continue
				}
				node.attrs[attr.Name.Local] = attr.Value
			}
			if len(stack) == 0 {
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
			innerStart = append(innerStart, decoder.InputOffset())
		case xml.EndElement:
			last := len(stack) - 1
			node := stack[last]
			if start := innerStart[last]; offset > start {
				node.inner = append([]byte(nil), document[start:offset]...)
			}
			stack = stack[:last]
			innerStart = innerStart[:last]
		case xml.CharData:
			for _, open := range stack {
				open.text.Write(tok)
			}
		}
	}

	if root == nil {
		return nil, malformed("missing root element", nil)
	}
	if len(stack) != 0 {
		return nil, malformed("unclosed element <"+stack[len(stack)-1].name+">", nil)
	}
	return root, nil
}

var errEncodingDeclared = errors.New("encoding declared")

// toUTF8 transcodes document when its XML declaration names an encoding
// other than UTF-8. Raw inner markup is sliced from the returned bytes, so
// the whole document is converted up front.
func toUTF8(document []byte) ([]byte, error) {
	var label string
	declared := xml.NewDecoder(bytes.NewReader(document))
	declared.CharsetReader = func(name string, _ io.Reader) (io.Reader, error) {
		label = name
		return nil, errEncodingDeclared
	}
	if _, err := declared.Token(); err == nil || label == "" {
		return document, nil
	}

	reader, err := charset.NewReaderLabel(label, bytes.NewReader(document))
	if err != nil {
		return nil, malformed(fmt.Sprintf("unsupported encoding %q", label), err)
	}
	converted, err := io.ReadAll(reader)
	if err != nil {
		return nil, malformed(fmt.Sprintf("decode %s document", label), err)
	}
	return converted, nil
}
