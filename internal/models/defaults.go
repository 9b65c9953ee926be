package models

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID creates a random identifier string.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// NewElement constructs the default element of the given type under a fresh ID.
func NewElement(typ ElementType) (Element, error) {
	el, err := newElementOfType(typ)
	if err != nil {
		return nil, err
	}
	base := el.Common()
	base.ID = GenerateID(string(typ))
	base.Style = Style{Margin: &Box{0, 0, 0, 10}}

	switch e := el.(type) {
	case *HeadingElement:
		e.Content = "Heading"
		e.Level = 1
		e.Style.FontSize = 24
		e.Style.FontWeight = "bold"
	case *ParagraphElement:
		e.Content = "Enter your text here"
		e.Style.FontSize = 12
	case *DividerElement:
		e.Width = Percent(100)
		e.Thickness = 1
		e.Color = "#cccccc"
		e.LineStyle = "solid"
		e.Style.Margin = &Box{0, 10, 0, 10}
	case *ImageElement:
		e.Width = Points(200)
		e.Height = Auto()
	case *TableElement:
		e.Rows, e.Cols = 2, 2
		e.HeaderRow = true
		e.HeaderBackground = "#f3f4f6"
		e.Body = [][]TableCell{
			{NewTableCell(), NewTableCell()},
			{NewTableCell(), NewTableCell()},
		}
	case *ColumnsElement:
		e.Columns = []Column{
			{Width: Star(), Content: []string{}},
			{Width: Star(), Content: []string{}},
		}
		e.Gap = 20
	case *ClientInfoElement:
		e.Heading = "Bill To"
		e.Content = "Client Name\nStreet Address\nCity, State Postcode"
		e.HeadingStyle = HeadingStyle{FontSize: 12, FontWeight: "bold", Color: "#666666"}
		e.BorderColor = "#3b82f6"
		e.BorderWidth = 3
		e.Style.FontSize = 11
	case *BusinessInfoElement:
		e.Heading = "From"
		e.Content = "Business Name\nStreet Address\nCity, State Postcode"
		e.HeadingStyle = HeadingStyle{FontSize: 12, FontWeight: "bold", Color: "#666666"}
		e.Style.FontSize = 11
	case *SignatureElement:
		e.Label = "Authorised Signature"
		e.LineLength = 200
		e.Style.FontSize = 10
	case *DateFieldElement:
		e.Label = "Date: "
		e.Format = "DD/MM/YYYY"
		e.Style.FontSize = 12
	case *AutoNumberElement:
		e.Label = "Invoice #: "
		e.Prefix = "INV-"
		e.StartNumber = 1
		e.Padding = 4
		e.Style.FontSize = 12
	case *VariableElement:
		e.Name = "variable"
		e.Style.FontSize = 12
	case *QRCodeElement:
		e.Value = "https://example.com"
		e.Size = 100
	case *BarcodeElement:
		e.Value = "123456789012"
		e.Format = "CODE128"
		e.Width = 200
		e.Height = 50
		e.DisplayValue = true
	case *ListElement:
		e.Items = []string{"Item 1", "Item 2", "Item 3"}
		e.Style.FontSize = 12
	case *ABNFieldElement:
		e.Label = "ABN: "
		e.Style.FontSize = 12
	case *BankDetailsElement:
		e.Heading = "Payment Details"
		e.Style.FontSize = 11
	}
	return el, nil
}
