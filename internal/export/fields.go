package export

import (
	"fmt"
	"strings"
	"time"

	"docdesigner/internal/models"
	"docdesigner/internal/render"
)

func (w *walker) dateFieldNode(e *models.DateFieldElement) render.Node {
	date := w.now()
	if value := strings.TrimSpace(e.Value); value != "" {
		if parsed, err := time.Parse("2006-01-02", value); err == nil {
			date = parsed
		} else {
			w.log.WithField("element", e.ID).Debugf("export: unparseable date %q, using the export date", value)
		}
	}
	format := e.Format
	if format == "" {
		format = "DD/MM/YYYY"
	}
	return textNode(e.Label+FormatDate(date, format), e.Style, 12)
}

var dateTokens = []string{"YYYY", "MMMM", "MMM", "YY", "MM", "DD", "D"}

// FormatDate renders t with the tokens YYYY, YY, MMMM (January), MMM (Jan),
// MM, DD and D. Other characters are copied.
func FormatDate(t time.Time, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		token := ""
		for _, candidate := range dateTokens {
			if strings.HasPrefix(format[i:], candidate) {
				token = candidate
				break
			}
		}
		switch token {
		case "YYYY":
			fmt.Fprintf(&b, "%04d", t.Year())
		case "YY":
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case "MMMM":
			b.WriteString(t.Month().String())
		case "MMM":
			b.WriteString(t.Month().String()[:3])
		case "MM":
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case "DD":
			fmt.Fprintf(&b, "%02d", t.Day())
		case "D":
			fmt.Fprintf(&b, "%d", t.Day())
		default:
			b.WriteByte(format[i])
			i++
			continue
		}
		i += len(token)
	}
	return b.String()
}

func autoNumberNode(e *models.AutoNumberElement) render.Node {
	number := fmt.Sprintf("%0*d", max(e.Padding, 0), e.StartNumber)
	return textNode(e.Label+e.Prefix+number, e.Style, 12)
}

func (w *walker) variableNode(e *models.VariableElement) render.Node {
	value, ok := w.vars[e.Name]
	if !ok {
		value = e.DefaultValue
	}
	if !ok && value == "" {
		value = "{{" + e.Name + "}}"
	}
	return textNode(value, e.Style, 12)
}

func abnNode(e *models.ABNFieldElement) render.Node {
	return textNode(e.Label+models.FormatABN(e.Value), e.Style, 12)
}

// FormatBSB writes a six-digit bank-state-branch number as XXX-XXX.
func FormatBSB(value string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
	if len(digits) != 6 {
		return strings.TrimSpace(value)
	}
	return digits[:3] + "-" + digits[3:]
}

func bankDetailsNode(e *models.BankDetailsElement) render.Node {
	var stack []render.Node
	if strings.TrimSpace(e.Heading) != "" {
		h := render.Text(e.Heading)
		h.Bold = true
		h.Margin = []float64{0, 0, 0, 4}
		stack = append(stack, h)
	}
	lines := []struct{ label, value string }{
		{"Bank", e.BankName},
		{"Account Name", e.AccountName},
		{"BSB", FormatBSB(e.BSB)},
		{"Account Number", e.AccountNumber},
		{"SWIFT", e.SwiftCode},
		{"Reference", e.Reference},
	}
	for _, line := range lines {
		if strings.TrimSpace(line.value) == "" {
			continue
		}
		stack = append(stack, render.Text(line.label+": "+line.value))
	}
	n := render.Node{Stack: stack}
	if len(stack) == 0 {
		n.Text = ""
	}
	mapStyle(&n, e.Style, 11)
	return n
}
