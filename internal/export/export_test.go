package export

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"docdesigner/internal/models"
	"docdesigner/internal/render"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 7, 9, 0, 0, 0, time.UTC)
}

func TestExportHeadingAndParagraph(t *testing.T) {
	store := models.NewStore()
	headingID, _ := store.AddElement(models.ElementHeading, models.AtRoot())
	paraID, _ := store.AddElement(models.ElementParagraph, models.AtRoot())
	store.UpdateElementStyle(paraID, "fontSize", nil)
	store.UpdateElementStyle(paraID, "fontWeight", "600")
	store.UpdateElementStyle(headingID, "fontWeight", "500")
	store.UpdateElementStyle(headingID, "textAlign", "center")

	def := Export(store.Document())
	if len(def.Content) != 2 {
		t.Fatalf("expected two nodes, got %d", len(def.Content))
	}
	heading, para := def.Content[0], def.Content[1]
	if heading.Text != "Heading" || heading.FontSize != 24 || heading.Bold || heading.Alignment != "center" {
		t.Fatalf("unexpected heading node %+v", heading)
	}
	if para.FontSize != 12 || !para.Bold {
		t.Fatalf("paragraph should default to 12pt and 600 should be bold, got %+v", para)
	}
	if !reflect.DeepEqual(para.Margin, []float64{0, 0, 0, 10}) {
		t.Fatalf("margin should pass through unchanged, got %v", para.Margin)
	}
}

func TestExportFiltersDanglingColumnChildren(t *testing.T) {
	store := models.NewStore()
	columnsID, _ := store.AddElement(models.ElementColumns, models.AtRoot())
	keep, _ := store.AddElement(models.ElementParagraph, models.InColumn(columnsID, 0))
	gone, _ := store.AddElement(models.ElementParagraph, models.InColumn(columnsID, 0))
	store.RemoveElement(gone)
	doc := store.Document()
	if len(doc.DanglingReferences()) != 1 {
		t.Fatalf("expected a dangling reference in the fixture")
	}

	def := Export(doc)
	columns := def.Content[0].Columns
	if len(columns) != 2 {
		t.Fatalf("expected two columns, got %d", len(columns))
	}
	if len(columns[0].Stack) != 1 || columns[0].Stack[0].Text != doc.Elements[keep].(*models.ParagraphElement).Content {
		t.Fatalf("expected only the surviving child, got %+v", columns[0].Stack)
	}
	if columns[0].Width != "*" {
		t.Fatalf("unexpected column width %v", columns[0].Width)
	}
	if _, err := json.Marshal(def); err != nil {
		t.Fatalf("definition must encode: %v", err)
	}
}

func TestExportDoesNotMutateInput(t *testing.T) {
	store := models.NewStore()
	tableID, _ := store.AddElement(models.ElementTable, models.AtRoot())
	store.AddElement(models.ElementHeading, models.InCell(tableID, 0, 0))
	store.MergeCells(tableID, 0, 0, 1, 2)
	store.AddElement(models.ElementClientInfo, models.AtRoot())
	store.UpdatePage(map[string]any{"backgroundColor": "#fef3c7", "watermark": map[string]any{"type": "text", "text": "DRAFT"}})
	doc := store.Document()
	before := doc.Clone()

	Export(doc, WithNow(fixedNow))
	if !reflect.DeepEqual(doc, before) {
		t.Fatalf("export mutated the document")
	}
}

func TestExportTableFillPrecedence(t *testing.T) {
	store := models.NewStore()
	id, _ := store.AddElement(models.ElementTable, models.AtRoot())
	store.AddTableRow(id)
	store.AddTableRow(id)
	store.UpdateElement(id, map[string]any{"alternateRowColor": "#f9fafb"})
	store.SetCellBackground(id, 0, 0, "#ff0000")
	store.SetCellBackground(id, 2, 1, "#00ff00")
	store.SetCellBackground(id, 3, 1, "#0000ff")

	table := Export(store.Document()).Content[0].Table
	if table.HeaderRows != 1 {
		t.Fatalf("header row should repeat, got %d", table.HeaderRows)
	}
	fills := [][]string{
		{table.Body[0][0].FillColor, table.Body[0][1].FillColor},
		{table.Body[1][0].FillColor, table.Body[1][1].FillColor},
		{table.Body[2][0].FillColor, table.Body[2][1].FillColor},
		{table.Body[3][0].FillColor, table.Body[3][1].FillColor},
	}
	want := [][]string{
		{"#f3f4f6", "#f3f4f6"},
		{"", ""},
		{"#f9fafb", "#f9fafb"},
		{"", "#0000ff"},
	}
	if !reflect.DeepEqual(fills, want) {
		t.Fatalf("unexpected fills %v", fills)
	}
}

func TestExportTableCoveredCellsArePlaceholders(t *testing.T) {
	store := models.NewStore()
	id, _ := store.AddElement(models.ElementTable, models.AtRoot())
	store.AddTableRow(id)
	store.AddTableColumn(id)
	store.MergeCells(id, 0, 0, 2, 2)
	store.UpdateTableWidths(id, []models.Dimension{models.Points(100), models.Percent(30), models.Star()})

	n := Export(store.Document()).Content[0]
	body := n.Table.Body
	if body[0][0].RowSpan != 2 || body[0][0].ColSpan != 2 {
		t.Fatalf("unexpected origin %+v", body[0][0])
	}
	for _, pos := range [][2]int{{0, 1}, {1, 0}, {1, 1}} {
		if !reflect.DeepEqual(body[pos[0]][pos[1]], render.Node{}) {
			t.Fatalf("expected placeholder at %v, got %+v", pos, body[pos[0]][pos[1]])
		}
	}
	for _, pos := range [][2]int{{0, 2}, {1, 2}, {2, 0}, {2, 2}} {
		if reflect.DeepEqual(body[pos[0]][pos[1]], render.Node{}) {
			t.Fatalf("expected content node at %v", pos)
		}
	}
	if !reflect.DeepEqual(n.Table.Widths, []any{100.0, "30%", "*"}) {
		t.Fatalf("unexpected widths %v", n.Table.Widths)
	}
	if n.Layout != nil {
		t.Fatalf("default borders need no layout")
	}
}

func TestExportTableCustomLayout(t *testing.T) {
	store := models.NewStore()
	id, _ := store.AddElement(models.ElementTable, models.AtRoot())
	store.UpdateElement(id, map[string]any{"borderWidth": 0.5, "borderColor": "#999999", "cellPadding": 6})
	n := Export(store.Document()).Content[0]
	layout := n.Layout
	if layout == nil || layout.HLineWidth(3) != 0.5 || layout.VLine.Color != "#999999" {
		t.Fatalf("unexpected layout %+v", layout)
	}
	if layout.PaddingLeft == nil || *layout.PaddingLeft != 6 {
		t.Fatalf("expected padding 6")
	}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `"layout":{"hLineWidth":0.5,"vLineWidth":0.5,"hLineColor":"#999999","vLineColor":"#999999","paddingLeft":6,"paddingRight":6,"paddingTop":6,"paddingBottom":6}`
	if !strings.Contains(string(data), want) {
		t.Fatalf("expected engine layout keys %s in %s", want, data)
	}
}

func TestExportDividerOffsets(t *testing.T) {
	cases := []struct {
		align  string
		width  models.Dimension
		x1, x2 float64
	}{
		{"", models.Percent(100), 0, ContentWidth},
		{"center", models.Percent(50), 128.75, 386.25},
		{"right", models.Points(115), 400, ContentWidth},
		{"left", models.Points(900), 0, ContentWidth},
	}
	for _, tc := range cases {
		el, _ := models.NewElement(models.ElementDivider)
		d := el.(*models.DividerElement)
		d.Width = tc.width
		d.Style.TextAlign = tc.align
		line := dividerNode(d).Canvas[0]
		if line.X1 != tc.x1 || line.X2 != tc.x2 {
			t.Fatalf("%s %v: got %v..%v want %v..%v", tc.align, tc.width, line.X1, line.X2, tc.x1, tc.x2)
		}
	}
}

func TestExportImageSizes(t *testing.T) {
	el, _ := models.NewElement(models.ElementImage)
	img := el.(*models.ImageElement)
	if _, ok := imageNode(img); ok {
		t.Fatalf("images without a source are dropped")
	}
	img.Src = "data:image/png;base64,AAAA"
	img.Width = models.Percent(50)
	n, ok := imageNode(img)
	if !ok || n.Width != 257.5 || n.Height != nil {
		t.Fatalf("unexpected image node %+v", n)
	}
	img.Height = models.Points(80)
	if n, _ := imageNode(img); n.Height != 80.0 {
		t.Fatalf("expected explicit height, got %v", n.Height)
	}
}

func TestExportClientInfoBorderWrap(t *testing.T) {
	store := models.NewStore()
	id, _ := store.AddElement(models.ElementClientInfo, models.AtRoot())
	plain := Export(store.Document()).Content[0]
	if len(plain.Stack) != 2 || plain.Stack[0].Text != "Bill To" || !plain.Stack[0].Bold {
		t.Fatalf("unexpected client stack %+v", plain)
	}

	store.UpdateElement(id, map[string]any{"showBorder": true})
	wrapped := Export(store.Document()).Content[0]
	if wrapped.Table == nil || len(wrapped.Table.Body) != 1 || len(wrapped.Table.Body[0]) != 1 {
		t.Fatalf("expected single-cell table wrap, got %+v", wrapped)
	}
	if wrapped.Layout.VLineWidth(0) != 3 || wrapped.Layout.VLineWidth(1) != 0 || wrapped.Layout.HLineWidth(0) != 0 {
		t.Fatalf("expected only a left border")
	}
	if wrapped.Table.Body[0][0].Margin != nil || wrapped.Margin == nil {
		t.Fatalf("the margin belongs to the wrapper")
	}
	data, err := json.Marshal(wrapped)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"hLineWidth":0,"vLineWidth":[3,0],"vLineColor":"#3b82f6"`) {
		t.Fatalf("unexpected wrapper layout %s", data)
	}
}

func TestExportSignature(t *testing.T) {
	store := models.NewStore()
	store.AddElement(models.ElementSignature, models.AtRoot())
	n := Export(store.Document()).Content[0]
	if len(n.Stack) != 2 || n.Stack[0].Canvas[0].X2 != 200 || n.Stack[1].Text != "Authorised Signature" {
		t.Fatalf("unexpected signature %+v", n)
	}
}

func TestExportFieldElements(t *testing.T) {
	store := models.NewStore()
	store.AddElement(models.ElementDateField, models.AtRoot())
	fixedID, _ := store.AddElement(models.ElementDateField, models.AtRoot())
	store.UpdateElement(fixedID, map[string]any{"value": "2025-12-25", "format": "D MMMM YYYY", "label": ""})
	store.AddElement(models.ElementAutoNumber, models.AtRoot())
	boundID, _ := store.AddElement(models.ElementVariable, models.AtRoot())
	store.UpdateElement(boundID, map[string]any{"name": "customer"})
	missingID, _ := store.AddElement(models.ElementVariable, models.AtRoot())
	store.UpdateElement(missingID, map[string]any{"name": "dueDate"})
	abnID, _ := store.AddElement(models.ElementABNField, models.AtRoot())
	store.UpdateElement(abnID, map[string]any{"value": "51824753556"})

	def := Export(store.Document(), WithNow(fixedNow), WithVariables(map[string]string{"customer": "Acme Pty Ltd"}))
	got := make([]any, len(def.Content))
	for i, n := range def.Content {
		got[i] = n.Text
	}
	want := []any{
		"Date: 07/03/2026",
		"25 December 2025",
		"Invoice #: INV-0001",
		"Acme Pty Ltd",
		"{{dueDate}}",
		"ABN: 51 824 753 556",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected field texts %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"DD/MM/YYYY":   "05/01/2026",
		"YYYY-MM-DD":   "2026-01-05",
		"D MMM YY":     "5 Jan 26",
		"MMMM D, YYYY": "January 5, 2026",
	}
	for format, want := range cases {
		if got := FormatDate(day, format); got != want {
			t.Fatalf("%s: got %q want %q", format, got, want)
		}
	}
}

func TestExportListAndBankDetails(t *testing.T) {
	store := models.NewStore()
	listID, _ := store.AddElement(models.ElementList, models.AtRoot())
	store.UpdateElement(listID, map[string]any{"ordered": true})
	bankID, _ := store.AddElement(models.ElementBankDetails, models.AtRoot())
	store.UpdateElement(bankID, map[string]any{"bankName": "Commonwealth Bank", "bsb": "062000", "accountNumber": "12345678"})

	def := Export(store.Document())
	if len(def.Content[0].OL) != 3 || def.Content[0].UL != nil {
		t.Fatalf("expected ordered list, got %+v", def.Content[0])
	}
	var lines []string
	for _, n := range def.Content[1].Stack {
		lines = append(lines, n.Text.(string))
	}
	want := []string{"Payment Details", "Bank: Commonwealth Bank", "BSB: 062-000", "Account Number: 12345678"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("unexpected bank lines %q", lines)
	}
}

func TestExportCodes(t *testing.T) {
	store := models.NewStore()
	store.AddElement(models.ElementQRCode, models.AtRoot())
	store.AddElement(models.ElementBarcode, models.AtRoot())
	badID, _ := store.AddElement(models.ElementBarcode, models.AtRoot())
	store.UpdateElement(badID, map[string]any{"format": "EAN13", "value": "not-digits"})

	def := Export(store.Document())
	if len(def.Content) != 2 {
		t.Fatalf("expected the unencodable barcode dropped, got %d nodes", len(def.Content))
	}
	qrNode := def.Content[0]
	if qrNode.QR != "https://example.com" || qrNode.Fit != 100.0 {
		t.Fatalf("unexpected qr node %+v", qrNode)
	}
	barcode := def.Content[1]
	if len(barcode.Stack) != 2 || !strings.HasPrefix(barcode.Stack[0].Image, "data:image/png;base64,") {
		t.Fatalf("unexpected barcode node %+v", barcode)
	}
	if barcode.Stack[1].Text != "123456789012" {
		t.Fatalf("expected caption with the value")
	}

	raster := Export(store.Document(), WithRasterQR(true)).Content[0]
	if raster.QR != "" || !strings.HasPrefix(raster.Image, "data:image/png;base64,") {
		t.Fatalf("expected raster qr image, got %+v", raster)
	}
}

func TestEncodeBarcodeFormats(t *testing.T) {
	for format, value := range map[string]string{"CODE128": "INV-0001", "CODE39": "abc123", "EAN13": "590123412345", "EAN8": "9638507"} {
		if _, err := EncodeBarcode(format, value); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
	}
	if _, err := EncodeBarcode("PDF417", "x"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestExportPageSettings(t *testing.T) {
	doc := models.NewDocument()
	doc.Page.Margins = models.Margins{Top: 10, Right: 20, Bottom: 30, Left: 40}
	def := Export(doc)
	if def.PageSize.Name != "A4" || def.PageMargins != [4]float64{40, 10, 20, 30} {
		t.Fatalf("unexpected page %+v %v", def.PageSize, def.PageMargins)
	}
	if def.Background != nil || def.Watermark != nil {
		t.Fatalf("a white page without watermark needs no background")
	}
	data, _ := json.Marshal(def)
	if strings.Contains(string(data), "background") {
		t.Fatalf("unexpected background in %s", data)
	}

	doc.Page.Size = models.PageCustom
	doc.Page.Width, doc.Page.Height = 300, 500
	doc.Page.Orientation = models.Landscape
	def = Export(doc)
	if def.PageSize != (render.PageSize{Width: 300, Height: 500}) || def.PageWidth != 500 {
		t.Fatalf("unexpected custom page %+v width=%v", def.PageSize, def.PageWidth)
	}
}

func TestExportBackgroundAndWatermark(t *testing.T) {
	doc := models.NewDocument()
	doc.Page.BackgroundColor = "#fef3c7"
	doc.Page.Watermark = &models.Watermark{Type: models.WatermarkText, Text: "PAID", Position: models.PositionBottomRight, Opacity: 0.3, Rotation: 45}
	def := Export(doc)
	nodes := def.BackgroundAt(1)
	if len(nodes) != 2 {
		t.Fatalf("expected page fill and watermark, got %+v", nodes)
	}
	rect := nodes[0].Canvas[0]
	if rect.W != 595.28 || rect.H != 841.89 || rect.Color != "#fef3c7" {
		t.Fatalf("unexpected fill %+v", rect)
	}
	mark := nodes[1]
	if mark.Text != "PAID" || mark.Alignment != "right" || *mark.Opacity != 0.3 {
		t.Fatalf("unexpected watermark %+v", mark)
	}
	pageHeight := 841.89
	if mark.AbsolutePosition.Y != pageHeight-40-48 {
		t.Fatalf("unexpected watermark position %+v", mark.AbsolutePosition)
	}
	if def.Watermark != nil {
		t.Fatalf("off-centre watermarks are drawn in the background")
	}

	doc.Page.Watermark.Position = models.PositionCenter
	doc.Page.BackgroundColor = "#FFFFFF"
	def = Export(doc)
	if def.Background != nil {
		t.Fatalf("rotated centre watermark on a white page needs no background")
	}
	if def.Watermark == nil || def.Watermark.Angle != 45 || def.Watermark.Text != "PAID" {
		t.Fatalf("expected native watermark, got %+v", def.Watermark)
	}
}

func TestExportImageWatermarkAnchors(t *testing.T) {
	wm := &models.Watermark{Type: models.WatermarkImage, ImageSrc: "logo.png", Width: 100, Position: models.PositionTopCenter}
	n, ok := watermarkNode(wm, 600, 800)
	if !ok || n.AbsolutePosition.X != 250 || n.AbsolutePosition.Y != 40 {
		t.Fatalf("unexpected image watermark %+v", n.AbsolutePosition)
	}
	if *n.Opacity != 0.15 {
		t.Fatalf("expected default opacity, got %v", *n.Opacity)
	}
}
