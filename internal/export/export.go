// Package export turns a document snapshot into the definition tree consumed
// by the PDF rendering engine. Exporting never mutates the document and never
// fails: dangling references and content that cannot be encoded are dropped.
package export

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"docdesigner/internal/models"
	"docdesigner/internal/render"
)

// ContentWidth is the assumed width of the content area in points (A4 minus
// the default margins). Percentage widths resolve against it.
const ContentWidth = 515.0

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger receiving debug records about dropped content.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Exporter) {
		if log != nil {
			e.log = log
		}
	}
}

// WithNow sets the clock used by date fields without a fixed value.
func WithNow(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithVariables binds variable elements by name.
func WithVariables(vars map[string]string) Option {
	return func(e *Exporter) {
		e.vars = make(map[string]string, len(vars))
		for k, v := range vars {
			e.vars[k] = v
		}
	}
}

// WithRasterQR renders QR codes as PNG images instead of native qr nodes.
func WithRasterQR(enabled bool) Option {
	return func(e *Exporter) {
		e.rasterQR = enabled
	}
}

// Exporter maps documents to definitions. It is safe for concurrent use.
type Exporter struct {
	log      logrus.FieldLogger
	now      func() time.Time
	vars     map[string]string
	rasterQR bool
}

// New constructs an exporter.
func New(opts ...Option) *Exporter {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	e := &Exporter{log: quiet, now: time.Now, vars: map[string]string{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export maps doc with a one-off exporter.
func Export(doc models.Document, opts ...Option) render.Definition {
	return New(opts...).Export(doc)
}

// Export maps doc to a definition.
func (e *Exporter) Export(doc models.Document) render.Definition {
	w := &walker{Exporter: e, doc: doc, visiting: map[string]struct{}{}}
	width, height := doc.Page.Dimensions()
	def := render.Definition{
		PageSize:        pageSize(doc.Page),
		PageOrientation: string(doc.Page.Orientation),
		PageMargins: [4]float64{
			doc.Page.Margins.Left, doc.Page.Margins.Top,
			doc.Page.Margins.Right, doc.Page.Margins.Bottom,
		},
		Content:    w.nodes(doc.RootElementIDs),
		PageWidth:  width,
		PageHeight: height,
	}
	def.Background = background(doc.Page)
	def.Watermark = nativeWatermark(doc.Page.Watermark)
	return def
}

// walker carries the per-export traversal state.
type walker struct {
	*Exporter
	doc      models.Document
	visiting map[string]struct{}
}

// nodes maps a child list, skipping IDs that produce nothing.
func (w *walker) nodes(ids []string) []render.Node {
	out := make([]render.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := w.node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

func (w *walker) node(id string) (render.Node, bool) {
	el, ok := w.doc.Element(id)
	if !ok {
		w.log.WithField("element", id).Debug("export: dropping dangling reference")
		return render.Node{}, false
	}
	if _, loop := w.visiting[id]; loop {
		w.log.WithField("element", id).Debug("export: dropping self-containing element")
		return render.Node{}, false
	}
	w.visiting[id] = struct{}{}
	defer delete(w.visiting, id)

	n, ok := w.element(el)
	if !ok {
		w.log.WithFields(logrus.Fields{"element": id, "type": el.Kind()}).Debug("export: element produced no output")
	}
	return n, ok
}

func (w *walker) element(el models.Element) (render.Node, bool) {
	switch e := el.(type) {
	case *models.HeadingElement:
		return textNode(e.Content, e.Style, 24), true
	case *models.ParagraphElement:
		return textNode(e.Content, e.Style, 12), true
	case *models.DividerElement:
		return dividerNode(e), true
	case *models.ImageElement:
		return imageNode(e)
	case *models.ColumnsElement:
		return w.columnsNode(e), true
	case *models.TableElement:
		return w.tableNode(e), true
	case *models.ClientInfoElement:
		return clientInfoNode(e), true
	case *models.BusinessInfoElement:
		return infoStack(e.Heading, e.Content, e.HeadingStyle, e.Style), true
	case *models.SignatureElement:
		return signatureNode(e), true
	case *models.DateFieldElement:
		return w.dateFieldNode(e), true
	case *models.AutoNumberElement:
		return autoNumberNode(e), true
	case *models.VariableElement:
		return w.variableNode(e), true
	case *models.QRCodeElement:
		return w.qrNode(e)
	case *models.BarcodeElement:
		return w.barcodeNode(e)
	case *models.ListElement:
		return listNode(e)
	case *models.ABNFieldElement:
		return abnNode(e), true
	case *models.BankDetailsElement:
		return bankDetailsNode(e), true
	}
	return render.Node{}, false
}

func pageSize(page models.PageSettings) render.PageSize {
	switch page.Size {
	case models.PageA3, models.PageA4, models.PageA5, models.PageLetter, models.PageLegal:
		return render.PageSize{Name: string(page.Size)}
	}
	w, h := page.Dimensions()
	if page.Orientation == models.Landscape && w > h {
		w, h = h, w
	}
	return render.PageSize{Width: w, Height: h}
}

func (w *walker) columnsNode(e *models.ColumnsElement) render.Node {
	n := render.Node{Columns: make([]render.Node, 0, len(e.Columns)), ColumnGap: e.Gap}
	for _, col := range e.Columns {
		column := render.Node{Width: widthValue(col.Width), Stack: w.nodes(col.Content)}
		if len(column.Stack) == 0 {
			column.Text = ""
		}
		n.Columns = append(n.Columns, column)
	}
	applyBox(&n, e.Style)
	return n
}
