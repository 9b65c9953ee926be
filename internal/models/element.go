package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownElementType is returned when decoding an element whose type tag is not registered.
var ErrUnknownElementType = errors.New("unknown_element_type")

// ElementType is the discriminator shared by every element kind.
type ElementType string

const (
	ElementHeading      ElementType = "heading"
	ElementParagraph    ElementType = "paragraph"
	ElementDivider      ElementType = "divider"
	ElementImage        ElementType = "image"
	ElementTable        ElementType = "table"
	ElementColumns      ElementType = "columns"
	ElementClientInfo   ElementType = "client-info"
	ElementBusinessInfo ElementType = "business-info"
	ElementSignature    ElementType = "signature"
	ElementDateField    ElementType = "date-field"
	ElementAutoNumber   ElementType = "auto-number"
	ElementVariable     ElementType = "variable"
	ElementQRCode       ElementType = "qrcode"
	ElementBarcode      ElementType = "barcode"
	ElementList         ElementType = "list"
	ElementABNField     ElementType = "abn-field"
	ElementBankDetails  ElementType = "bank-details"
)

// AllElementTypes lists the supported element kinds in palette order.
var AllElementTypes = []ElementType{
	ElementHeading, ElementParagraph, ElementDivider, ElementImage, ElementTable, ElementColumns,
	ElementClientInfo, ElementBusinessInfo, ElementSignature, ElementDateField, ElementAutoNumber,
	ElementVariable, ElementQRCode, ElementBarcode, ElementList, ElementABNField, ElementBankDetails,
}

// ParseElementType normalises a type tag and reports whether it is registered.
func ParseElementType(value string) (ElementType, bool) {
	candidate := ElementType(strings.ToLower(strings.TrimSpace(value)))
	for _, typ := range AllElementTypes {
		if typ == candidate {
			return typ, true
		}
	}
	return "", false
}

// Element is one node of the document content tree. Concrete kinds are pointers
// to the structs below; the tag returned by Kind always matches Common().Type.
type Element interface {
	Common() *Base
	Kind() ElementType
	copyElement() Element
}

// Container is implemented by element kinds that own child element IDs.
type Container interface {
	Element
	ChildIDs() []string
}

// Base carries the fields every element kind has.
type Base struct {
	ID    string      `json:"id"`
	Type  ElementType `json:"type"`
	Style Style       `json:"style"`
	Role  string      `json:"role,omitempty"`
}

// Common returns the shared fields for in-place edits.
func (b *Base) Common() *Base { return b }

// Kind returns the discriminator.
func (b *Base) Kind() ElementType { return b.Type }

func (b Base) copyBase() Base {
	b.Style = b.Style.Clone()
	return b
}

// HeadingElement is a single line of heading text.
type HeadingElement struct {
	Base
	Content string `json:"content"`
	Level   int    `json:"level,omitempty"`
}

func (e *HeadingElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// PlainText returns the heading text.
func (e *HeadingElement) PlainText() string { return e.Content }

// ParagraphElement is a block of body text.
type ParagraphElement struct {
	Base
	Content string `json:"content"`
}

func (e *ParagraphElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// PlainText returns the paragraph text.
func (e *ParagraphElement) PlainText() string { return e.Content }

// DividerElement is a horizontal rule.
type DividerElement struct {
	Base
	Width     Dimension `json:"width"`
	Thickness float64   `json:"thickness,omitempty"`
	Color     string    `json:"color,omitempty"`
	LineStyle string    `json:"lineStyle,omitempty"` // solid, dashed, dotted
}

func (e *DividerElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// ImageElement references an image by URL or data URL.
type ImageElement struct {
	Base
	Src    string    `json:"src"`
	Alt    string    `json:"alt,omitempty"`
	Width  Dimension `json:"width"`
	Height Dimension `json:"height"`
}

func (e *ImageElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// Column is one vertical lane of a columns element.
type Column struct {
	Width   Dimension `json:"width"`
	Content []string  `json:"content"`
}

// ColumnsElement lays out child elements side by side.
type ColumnsElement struct {
	Base
	Columns []Column `json:"columns"`
	Gap     float64  `json:"gap,omitempty"`
}

func (e *ColumnsElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	c.Columns = make([]Column, len(e.Columns))
	for i, col := range e.Columns {
		c.Columns[i] = Column{Width: col.Width, Content: cloneIDs(col.Content)}
	}
	return &c
}

// ChildIDs returns every child ID in column order.
func (e *ColumnsElement) ChildIDs() []string {
	var ids []string
	for _, col := range e.Columns {
		ids = append(ids, col.Content...)
	}
	return ids
}

// TableCell is one grid position. A position covered by another cell's span
// keeps its placeholder entry.
type TableCell struct {
	Content         []string `json:"content"`
	RowSpan         int      `json:"rowSpan,omitempty"`
	ColSpan         int      `json:"colSpan,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
}

// Spans returns the effective row and column span, never below 1.
func (c TableCell) Spans() (int, int) {
	return max(c.RowSpan, 1), max(c.ColSpan, 1)
}

// WithSpans returns a copy of the cell carrying the given spans; a span of 1 is stored as unset.
func (c TableCell) WithSpans(rowSpan, colSpan int) TableCell {
	c.RowSpan, c.ColSpan = 0, 0
	if rowSpan > 1 {
		c.RowSpan = rowSpan
	}
	if colSpan > 1 {
		c.ColSpan = colSpan
	}
	return c
}

// Clone returns a deep copy of the cell.
func (c TableCell) Clone() TableCell {
	c.Content = cloneIDs(c.Content)
	return c
}

// NewTableCell returns an empty unmerged cell.
func NewTableCell() TableCell {
	return TableCell{Content: []string{}}
}

// TableElement is a grid of cells, each holding child element IDs.
type TableElement struct {
	Base
	Rows              int           `json:"rows"`
	Cols              int           `json:"cols"`
	HeaderRow         bool          `json:"headerRow"`
	Body              [][]TableCell `json:"body"`
	ColumnWidths      []Dimension   `json:"columnWidths,omitempty"`
	HeaderBackground  string        `json:"headerBackground,omitempty"`
	AlternateRowColor string        `json:"alternateRowColor,omitempty"`
	BorderWidth       *float64      `json:"borderWidth,omitempty"`
	BorderColor       string        `json:"borderColor,omitempty"`
	CellPadding       *float64      `json:"cellPadding,omitempty"`
}

func (e *TableElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	c.Body = cloneBody(e.Body)
	if e.ColumnWidths != nil {
		c.ColumnWidths = append([]Dimension{}, e.ColumnWidths...)
	}
	if e.BorderWidth != nil {
		v := *e.BorderWidth
		c.BorderWidth = &v
	}
	if e.CellPadding != nil {
		v := *e.CellPadding
		c.CellPadding = &v
	}
	return &c
}

// ChildIDs returns every child ID in row-major order.
func (e *TableElement) ChildIDs() []string {
	var ids []string
	for _, row := range e.Body {
		for _, cell := range row {
			ids = append(ids, cell.Content...)
		}
	}
	return ids
}

// Cell returns the cell at (row, col) when it exists.
func (e *TableElement) Cell(row, col int) (TableCell, bool) {
	if row < 0 || row >= len(e.Body) || col < 0 || col >= len(e.Body[row]) {
		return TableCell{}, false
	}
	return e.Body[row][col], true
}

// HeadingStyle styles the heading line of the info blocks.
type HeadingStyle struct {
	FontSize   float64    `json:"fontSize,omitempty"`
	FontWeight FontWeight `json:"fontWeight,omitempty"`
	Color      string     `json:"color,omitempty"`
}

// ClientInfoElement is the "bill to" block.
type ClientInfoElement struct {
	Base
	Heading      string       `json:"heading"`
	Content      string       `json:"content"`
	HeadingStyle HeadingStyle `json:"headingStyle"`
	ShowBorder   bool         `json:"showBorder,omitempty"`
	BorderColor  string       `json:"borderColor,omitempty"`
	BorderWidth  float64      `json:"borderWidth,omitempty"`
}

func (e *ClientInfoElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// PlainText returns heading and content joined by a newline.
func (e *ClientInfoElement) PlainText() string { return joinNonEmpty(e.Heading, e.Content) }

// BusinessInfoElement is the issuing business block.
type BusinessInfoElement struct {
	Base
	Heading      string       `json:"heading"`
	Content      string       `json:"content"`
	HeadingStyle HeadingStyle `json:"headingStyle"`
}

func (e *BusinessInfoElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// PlainText returns heading and content joined by a newline.
func (e *BusinessInfoElement) PlainText() string { return joinNonEmpty(e.Heading, e.Content) }

// SignatureElement is a signing line with a caption.
type SignatureElement struct {
	Base
	Label      string  `json:"label"`
	LineLength float64 `json:"lineLength,omitempty"`
}

func (e *SignatureElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// DateFieldElement prints a fixed date or the export date.
type DateFieldElement struct {
	Base
	Label  string `json:"label,omitempty"`
	Format string `json:"format,omitempty"`
	Value  string `json:"value,omitempty"` // YYYY-MM-DD; empty means the export date
}

func (e *DateFieldElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// AutoNumberElement prints a document number such as INV-0001.
type AutoNumberElement struct {
	Base
	Label       string `json:"label,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	StartNumber int    `json:"startNumber"`
	Padding     int    `json:"padding,omitempty"`
}

func (e *AutoNumberElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// VariableElement is a placeholder bound at export time.
type VariableElement struct {
	Base
	Name         string `json:"name"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

func (e *VariableElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// QRCodeElement encodes a value as a QR symbol.
type QRCodeElement struct {
	Base
	Value string  `json:"value"`
	Size  float64 `json:"size,omitempty"`
}

func (e *QRCodeElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// BarcodeElement encodes a value as a linear barcode.
type BarcodeElement struct {
	Base
	Value        string  `json:"value"`
	Format       string  `json:"format,omitempty"` // CODE128, CODE39, EAN13, EAN8
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	DisplayValue bool    `json:"displayValue,omitempty"`
}

func (e *BarcodeElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// ListElement is a bulleted or numbered list of strings.
type ListElement struct {
	Base
	Items   []string `json:"items"`
	Ordered bool     `json:"ordered,omitempty"`
}

func (e *ListElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	c.Items = append([]string{}, e.Items...)
	return &c
}

// PlainText returns the items one per line.
func (e *ListElement) PlainText() string { return strings.Join(e.Items, "\n") }

// ABNFieldElement prints an Australian Business Number.
type ABNFieldElement struct {
	Base
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

func (e *ABNFieldElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// BankDetailsElement prints payment instructions.
type BankDetailsElement struct {
	Base
	Heading       string `json:"heading,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	BSB           string `json:"bsb,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	SwiftCode     string `json:"swiftCode,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

func (e *BankDetailsElement) copyElement() Element {
	c := *e
	c.Base = e.copyBase()
	return &c
}

// newElementOfType returns an empty value of the concrete kind for typ.
func newElementOfType(typ ElementType) (Element, error) {
	var el Element
	switch typ {
	case ElementHeading:
		el = &HeadingElement{}
	case ElementParagraph:
		el = &ParagraphElement{}
	case ElementDivider:
		el = &DividerElement{}
	case ElementImage:
		el = &ImageElement{}
	case ElementTable:
		el = &TableElement{}
	case ElementColumns:
		el = &ColumnsElement{}
	case ElementClientInfo:
		el = &ClientInfoElement{}
	case ElementBusinessInfo:
		el = &BusinessInfoElement{}
	case ElementSignature:
		el = &SignatureElement{}
	case ElementDateField:
		el = &DateFieldElement{}
	case ElementAutoNumber:
		el = &AutoNumberElement{}
	case ElementVariable:
		el = &VariableElement{}
	case ElementQRCode:
		el = &QRCodeElement{}
	case ElementBarcode:
		el = &BarcodeElement{}
	case ElementList:
		el = &ListElement{}
	case ElementABNField:
		el = &ABNFieldElement{}
	case ElementBankDetails:
		el = &BankDetailsElement{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownElementType, typ)
	}
	el.Common().Type = typ
	return el, nil
}

// DecodeElement decodes one element object, dispatching on its "type" tag.
func DecodeElement(data []byte) (Element, error) {
	var head struct {
		Type ElementType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	el, err := newElementOfType(head.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, el); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	el.Common().Type = head.Type
	return el, nil
}

// CopyElement returns a deep copy of el that keeps its ID.
func CopyElement(el Element) Element {
	if el == nil {
		return nil
	}
	return el.copyElement()
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return append(make([]string, 0, len(ids)), ids...)
}

func cloneBody(body [][]TableCell) [][]TableCell {
	out := make([][]TableCell, len(body))
	for r, row := range body {
		out[r] = make([]TableCell, len(row))
		for c, cell := range row {
			out[r][c] = cell.Clone()
		}
	}
	return out
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
