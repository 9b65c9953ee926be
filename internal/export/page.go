package export

import (
	"strings"

	"docdesigner/internal/models"
	"docdesigner/internal/render"
)

// watermarkInset keeps anchored watermarks off the sheet edge.
const watermarkInset = 40.0

func isWhite(color string) bool {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case "", "#fff", "#ffffff", "white":
		return true
	}
	return false
}

// rotatedText reports whether the watermark goes through the engine's native
// watermark entry, which is the only way to rotate it.
func rotatedText(wm *models.Watermark) bool {
	return wm != nil && wm.Type == models.WatermarkText && wm.Rotation != 0 &&
		(wm.Position == "" || wm.Position == models.PositionCenter)
}

func nativeWatermark(wm *models.Watermark) *render.Watermark {
	if !rotatedText(wm) || strings.TrimSpace(wm.Text) == "" {
		return nil
	}
	out := &render.Watermark{
		Text:     wm.Text,
		Color:    wm.Color,
		Opacity:  watermarkOpacity(wm),
		FontSize: wm.FontSize,
		Angle:    wm.Rotation,
	}
	if out.Color == "" {
		out.Color = "#cccccc"
	}
	return out
}

func watermarkOpacity(wm *models.Watermark) float64 {
	if wm.Opacity <= 0 || wm.Opacity > 1 {
		return 0.15
	}
	return wm.Opacity
}

// background returns the per-page callback drawing the page fill and the
// watermark, or nil when the page has neither.
func background(page models.PageSettings) render.BackgroundFunc {
	fill := ""
	if !isWhite(page.BackgroundColor) {
		fill = page.BackgroundColor
	}
	var wm *models.Watermark
	if page.Watermark != nil && !rotatedText(page.Watermark) {
		copied := *page.Watermark
		wm = &copied
	}
	if fill == "" && wm == nil {
		return nil
	}
	return func(_ int, width, height float64) []render.Node {
		var out []render.Node
		if fill != "" {
			out = append(out, render.Node{Canvas: []render.CanvasItem{render.Rect(0, 0, width, height, fill)}})
		}
		if wm != nil {
			if n, ok := watermarkNode(wm, width, height); ok {
				out = append(out, n)
			}
		}
		return out
	}
}

// watermarkNode places the watermark with an absolute position resolved from
// its nine-way anchor.
func watermarkNode(wm *models.Watermark, pageWidth, pageHeight float64) (render.Node, bool) {
	vertical, horizontal := wm.Position.Anchor()
	opacity := watermarkOpacity(wm)
	switch wm.Type {
	case models.WatermarkImage:
		if strings.TrimSpace(wm.ImageSrc) == "" {
			return render.Node{}, false
		}
		size := wm.Width
		if size <= 0 {
			size = 200
		}
		return render.Node{
			Image:            wm.ImageSrc,
			Width:            size,
			Opacity:          &opacity,
			AbsolutePosition: &render.Position{X: anchorOffset(horizontal, pageWidth, size), Y: anchorOffset(vertical, pageHeight, size)},
		}, true
	default:
		if strings.TrimSpace(wm.Text) == "" {
			return render.Node{}, false
		}
		fontSize := wm.FontSize
		if fontSize <= 0 {
			fontSize = 48
		}
		color := wm.Color
		if color == "" {
			color = "#cccccc"
		}
		return render.Node{
			Text:             wm.Text,
			FontSize:         fontSize,
			Color:            color,
			Bold:             true,
			Opacity:          &opacity,
			Alignment:        horizontal,
			Width:            pageWidth,
			Margin:           []float64{watermarkInset, 0, watermarkInset, 0},
			AbsolutePosition: &render.Position{X: 0, Y: anchorOffset(vertical, pageHeight, fontSize)},
		}, true
	}
}

// anchorOffset positions an item of the given extent along one page axis.
func anchorOffset(anchor string, total, extent float64) float64 {
	switch anchor {
	case "top", "left":
		return watermarkInset
	case "bottom", "right":
		return max(total-watermarkInset-extent, 0)
	}
	return max((total-extent)/2, 0)
}
