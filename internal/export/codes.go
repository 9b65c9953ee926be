package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"
	"github.com/sirupsen/logrus"

	"docdesigner/internal/models"
	"docdesigner/internal/render"
)

func (w *walker) qrNode(e *models.QRCodeElement) (render.Node, bool) {
	value := strings.TrimSpace(e.Value)
	if value == "" {
		return render.Node{}, false
	}
	size := e.Size
	if size <= 0 {
		size = 100
	}
	n := render.Node{Alignment: e.Style.TextAlign}
	if w.rasterQR {
		code, err := qr.Encode(value, qr.M, qr.Auto)
		if err != nil {
			w.log.WithField("element", e.ID).WithError(err).Debug("export: dropping unencodable qr code")
			return render.Node{}, false
		}
		src, err := pngDataURL(code, int(size), int(size))
		if err != nil {
			w.log.WithField("element", e.ID).WithError(err).Debug("export: dropping qr code")
			return render.Node{}, false
		}
		n.Image = src
		n.Fit = []float64{size, size}
	} else {
		n.QR = value
		n.Fit = size
	}
	applyBox(&n, e.Style)
	return n, true
}

// EncodeBarcode encodes value in the named linear symbology: CODE128 (the
// default), CODE39, EAN13 or EAN8.
func EncodeBarcode(format, value string) (barcode.Barcode, error) {
	var code barcode.Barcode
	var err error
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case "", "CODE128":
		code, err = code128.Encode(value)
	case "CODE39":
		code, err = code39.Encode(strings.ToUpper(value), false, true)
	case "EAN13", "EAN8", "EAN":
		code, err = ean.Encode(value)
	default:
		return nil, fmt.Errorf("unsupported barcode format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return code, nil
}

func (w *walker) barcodeNode(e *models.BarcodeElement) (render.Node, bool) {
	value := strings.TrimSpace(e.Value)
	if value == "" {
		return render.Node{}, false
	}
	code, err := EncodeBarcode(e.Format, value)
	if err != nil {
		w.log.WithFields(logrus.Fields{"element": e.ID, "format": e.Format}).WithError(err).Debug("export: dropping unencodable barcode")
		return render.Node{}, false
	}
	width, height := e.Width, e.Height
	if width <= 0 {
		width = 200
	}
	if height <= 0 {
		height = 50
	}
	src, err := pngDataURL(code, int(width), int(height))
	if err != nil {
		w.log.WithField("element", e.ID).WithError(err).Debug("export: dropping barcode")
		return render.Node{}, false
	}
	img := render.Node{Image: src, Width: width, Height: height}
	n := img
	if e.DisplayValue {
		caption := render.Text(value)
		caption.FontSize = 10
		caption.Alignment = "center"
		n = render.Node{Stack: []render.Node{img, caption}, Width: width}
	}
	n.Alignment = e.Style.TextAlign
	applyBox(&n, e.Style)
	return n, true
}

// pngDataURL scales code to at least width x height pixels and encodes it.
func pngDataURL(code barcode.Barcode, width, height int) (string, error) {
	bounds := code.Bounds()
	width = max(width, bounds.Dx())
	height = max(height, bounds.Dy())
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
