package models

import "strings"

// PageSize names a standard sheet.
type PageSize string

const (
	PageA3     PageSize = "A3"
	PageA4     PageSize = "A4"
	PageA5     PageSize = "A5"
	PageLetter PageSize = "LETTER"
	PageLegal  PageSize = "LEGAL"
	PageCustom PageSize = "CUSTOM"
)

// Orientation of the sheet.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// pageDimensions are portrait sizes in points.
var pageDimensions = map[PageSize][2]float64{
	PageA3:     {841.89, 1190.55},
	PageA4:     {595.28, 841.89},
	PageA5:     {419.53, 595.28},
	PageLetter: {612, 792},
	PageLegal:  {612, 1008},
}

// Margins are page margins in points.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// WatermarkType selects the watermark content.
type WatermarkType string

const (
	WatermarkText  WatermarkType = "text"
	WatermarkImage WatermarkType = "image"
)

// WatermarkPosition is one of nine anchor points on the page.
type WatermarkPosition string

const (
	PositionTopLeft      WatermarkPosition = "top-left"
	PositionTopCenter    WatermarkPosition = "top-center"
	PositionTopRight     WatermarkPosition = "top-right"
	PositionCenterLeft   WatermarkPosition = "center-left"
	PositionCenter       WatermarkPosition = "center"
	PositionCenterRight  WatermarkPosition = "center-right"
	PositionBottomLeft   WatermarkPosition = "bottom-left"
	PositionBottomCenter WatermarkPosition = "bottom-center"
	PositionBottomRight  WatermarkPosition = "bottom-right"
)

// Anchor splits the position into its vertical and horizontal parts
// ("top|center|bottom", "left|center|right"). Unknown values anchor at the centre.
func (p WatermarkPosition) Anchor() (string, string) {
	v, h, found := strings.Cut(string(p), "-")
	if !found {
		return "center", "center"
	}
	switch v {
	case "top", "center", "bottom":
	default:
		v = "center"
	}
	switch h {
	case "left", "center", "right":
	default:
		h = "center"
	}
	return v, h
}

// Watermark is drawn behind the page content.
type Watermark struct {
	Type     WatermarkType     `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageSrc string            `json:"imageSrc,omitempty"`
	FontSize float64           `json:"fontSize,omitempty"`
	Color    string            `json:"color,omitempty"`
	Width    float64           `json:"width,omitempty"`
	Position WatermarkPosition `json:"position,omitempty"`
	Opacity  float64           `json:"opacity,omitempty"`
	Rotation float64           `json:"rotation,omitempty"`
}

// PageSettings configures the sheet the document is laid out on.
type PageSettings struct {
	Size            PageSize    `json:"size"`
	Orientation     Orientation `json:"orientation,omitempty"`
	Width           float64     `json:"width,omitempty"`
	Height          float64     `json:"height,omitempty"`
	Margins         Margins     `json:"margins"`
	Padding         *Box        `json:"padding,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	Watermark       *Watermark  `json:"watermark,omitempty"`
}

// DefaultPageSettings returns an A4 portrait page with 40pt margins.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		Size:            PageA4,
		Orientation:     Portrait,
		Margins:         Margins{Top: 40, Right: 40, Bottom: 40, Left: 40},
		BackgroundColor: "#ffffff",
	}
}

// Dimensions returns width and height in points with orientation applied.
// Custom sizes use Width/Height; unknown names fall back to A4.
func (p PageSettings) Dimensions() (float64, float64) {
	var w, h float64
	if p.Size == PageCustom || (p.Size == "" && p.Width > 0 && p.Height > 0) {
		w, h = p.Width, p.Height
	} else {
		dims, ok := pageDimensions[PageSize(strings.ToUpper(string(p.Size)))]
		if !ok {
			dims = pageDimensions[PageA4]
		}
		w, h = dims[0], dims[1]
	}
	if p.Orientation == Landscape && w < h {
		w, h = h, w
	}
	return w, h
}

// Clone returns a copy that shares no pointers with p.
func (p PageSettings) Clone() PageSettings {
	if p.Padding != nil {
		pad := *p.Padding
		p.Padding = &pad
	}
	if p.Watermark != nil {
		wm := *p.Watermark
		p.Watermark = &wm
	}
	return p
}
