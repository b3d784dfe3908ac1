// ABOUTME: Page layout primitives for the report PDF
// ABOUTME: A vertical cursor with section bands, field grids, callouts, wrapped text and the photo grid
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres.
const (
	pageWidth    = 210.0
	margin       = 15.0
	contentWidth = 180.0
	topMargin    = 20.0
	pageBottom   = 270.0
	lineHeight   = 5.0
	fieldRow     = 15.0

	photoCellW    = 88.0
	photoCellH    = 72.0
	photoStride   = 92.0
	photoImageW   = 85.0
	photoImageH   = 60.0
	photoRowStep  = 80.0
	captionStripH = 8.5
	captionLineH  = 3.0
	captionLines  = 2

	calloutMinHeight = 16.0
)

var (
	colorPrimary  = [3]int{37, 99, 235}
	colorBand     = [3]int{241, 245, 249}
	colorBandText = [3]int{30, 41, 59}
	colorLabel    = [3]int{100, 116, 139}
	colorText     = [3]int{0, 0, 0}
	colorFrame    = [3]int{203, 213, 225}
	colorCaptionB = [3]int{248, 250, 252}
	colorCaptionT = [3]int{51, 65, 85}
	colorDone     = [3]int{22, 163, 74}
)

// calloutStyle colors one kind of highlighted box.
type calloutStyle struct {
	fill   [3]int
	border [3]int
	title  [3]int
}

var (
	iamoCallout = calloutStyle{
		fill:   [3]int{255, 241, 242},
		border: [3]int{225, 29, 72},
		title:  [3]int{190, 18, 60},
	}
	pendencyCallout = calloutStyle{
		fill:   [3]int{255, 251, 235},
		border: [3]int{217, 119, 6},
		title:  [3]int{180, 83, 9},
	}
)

type field struct {
	label string
	value string
}

// layout tracks the write position down the current page.
type layout struct {
	pdf *fpdf.Fpdf
	y   float64
}

func (l *layout) fill(c [3]int) { l.pdf.SetFillColor(c[0], c[1], c[2]) }
func (l *layout) text(c [3]int) { l.pdf.SetTextColor(c[0], c[1], c[2]) }
func (l *layout) draw(c [3]int) { l.pdf.SetDrawColor(c[0], c[1], c[2]) }

func (l *layout) font(style string, size float64) {
	l.pdf.SetFont("Helvetica", style, size)
}

func (l *layout) newPage() {
	l.pdf.AddPage()
	l.y = topMargin
}

// ensure starts a new page when h more millimetres would cross the bottom.
func (l *layout) ensure(h float64) bool {
	if l.y+h > pageBottom {
		l.newPage()
		return true
	}
	return false
}

// wrap splits sanitized text into lines no wider than w in the current font.
// Hard newlines are kept; blank lines survive as empty strings.
func (l *layout) wrap(s string, w float64) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		lines := l.pdf.SplitText(para, w)
		if len(lines) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, lines...)
	}
	return out
}

// fit shortens s with an ellipsis until it fits in w.
func (l *layout) fit(s string, w float64) string {
	if l.pdf.GetStringWidth(s) <= w {
		return s
	}
	const ellipsis = "..."
	r := []rune(s)
	for len(r) > 0 && l.pdf.GetStringWidth(string(r)+ellipsis) > w {
		r = r[:len(r)-1]
	}
	return strings.TrimRight(string(r), " ") + ellipsis
}

// header draws the banner across the top of the first page.
func (l *layout) header(om, generated string) {
	p := l.pdf
	l.fill(colorPrimary)
	p.Rect(0, 0, pageWidth, 40, "F")

	p.SetTextColor(255, 255, 255)
	l.font("B", 9)
	p.Text(margin, 15, "SISTEMA DE RELATORIOS AUTOMACAO")
	l.font("B", 18)
	p.Text(margin, 26, "RELATORIO DE EXECUCAO")
	l.font("B", 10)
	p.Text(margin, 34, "MINA SERRA SUL - S11D")

	p.SetFillColor(255, 255, 255)
	p.RoundedRect(140, 12, 55, 18, 2, "1234", "F")
	l.text(colorPrimary)
	l.font("B", 8)
	p.Text(145, 18, "NUMERO DA OM")
	l.font("B", 14)
	p.Text(145, 26, l.fit(om, 45))

	p.SetTextColor(255, 255, 255)
	l.font("", 7)
	p.Text(140, 36, "EMITIDO EM "+generated)

	l.y = 55
}

// section draws a titled band with a colored left rule.
func (l *layout) section(title string) {
	l.ensure(20)
	p := l.pdf
	l.fill(colorBand)
	p.Rect(margin, l.y-5, contentWidth, 8, "F")
	l.fill(colorPrimary)
	p.Rect(margin, l.y-5, 1.5, 8, "F")

	l.font("B", 9)
	l.text(colorBandText)
	p.Text(margin+4, l.y+1, strings.ToUpper(title))
	l.y += 12
}

// grid lays label/value pairs out in cols fixed-width columns.
func (l *layout) grid(fields []field, cols int) {
	colW := contentWidth / float64(cols)
	rows := int(math.Ceil(float64(len(fields)) / float64(cols)))
	for row := 0; row < rows; row++ {
		l.ensure(fieldRow)
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(fields) {
				break
			}
			x := margin + float64(col)*colW
			l.font("B", 7)
			l.text(colorLabel)
			l.pdf.Text(x, l.y, strings.ToUpper(fields[i].label))
			l.font("", 10)
			l.text(colorText)
			l.pdf.Text(x, l.y+5, l.fit(fields[i].value, colW-4))
		}
		l.y += fieldRow
	}
}

func (l *layout) label(s string) {
	l.ensure(4 + lineHeight)
	l.font("B", 7)
	l.text(colorLabel)
	l.pdf.Text(margin, l.y, s)
	l.y += 4
}

// paragraph writes wrapped text, breaking pages line by line.
func (l *layout) paragraph(s string, gap float64) {
	l.font("", 10)
	l.text(colorText)
	for _, line := range l.wrap(s, contentWidth) {
		if l.ensure(lineHeight) {
			l.font("", 10)
			l.text(colorText)
		}
		l.pdf.Text(margin, l.y, line)
		l.y += lineHeight
	}
	l.y += gap
}

// checklist writes each item on its own wrapped block, with a drawn tick for
// completed items and an empty box for open ones.
func (l *layout) checklist(items []checkItem, gap float64) {
	const indent = 6.0
	for _, item := range items {
		text := strings.TrimSpace(Sanitize(item.text))
		l.font("", 10)
		lines := l.wrap(text, contentWidth-indent)
		for i, line := range lines {
			l.ensure(lineHeight)
			if i == 0 {
				l.marker(item.state, margin, l.y)
			}
			l.font("", 10)
			l.text(colorText)
			l.pdf.Text(margin+indent, l.y, line)
			l.y += lineHeight
		}
	}
	l.y += gap
}

// marker draws the check state glyph with its baseline at y.
func (l *layout) marker(state checkState, x, y float64) {
	p := l.pdf
	switch state {
	case checkDone:
		l.draw(colorDone)
		p.SetLineWidth(0.6)
		p.SetLineCapStyle("round")
		p.Line(x+0.4, y-1.6, x+1.5, y-0.4)
		p.Line(x+1.5, y-0.4, x+3.6, y-3.4)
		p.SetLineCapStyle("butt")
	case checkOpen:
		l.draw(colorLabel)
		p.SetLineWidth(0.3)
		p.Rect(x+0.4, y-3.2, 3, 3, "D")
	}
	p.SetLineWidth(0.2)
}

// callout draws a highlighted box whose height grows with the wrapped body.
// A body taller than a page continues in a new box on the next page.
func (l *layout) callout(style calloutStyle, title, body string) {
	const pad = 4.0

	l.font("", 9)
	lines := l.wrap(body, contentWidth-2*pad)
	h := math.Max(calloutMinHeight, 10+float64(len(lines))*lineHeight)
	if h+4 <= pageBottom-topMargin {
		l.ensure(h + 4)
	} else {
		l.ensure(calloutMinHeight + 4)
	}

	heading := strings.ToUpper(title)
	for {
		top := l.y - 4
		room := int((pageBottom - top - 18) / lineHeight)
		if room < 1 {
			room = 1
		}
		chunk := lines
		if len(chunk) > room {
			chunk = lines[:room]
		}
		lines = lines[len(chunk):]

		h = math.Max(calloutMinHeight, 10+float64(len(chunk))*lineHeight)
		l.calloutBox(style, heading, chunk, top, h)
		l.y = top + h + 10
		if len(lines) == 0 {
			return
		}
		l.newPage()
		heading = strings.ToUpper(title) + " (CONT.)"
	}
}

func (l *layout) calloutBox(style calloutStyle, heading string, lines []string, top, h float64) {
	const pad = 4.0
	p := l.pdf

	l.fill(style.fill)
	l.draw(style.border)
	p.SetLineWidth(0.4)
	p.RoundedRect(margin, top, contentWidth, h, 1.5, "1234", "FD")
	l.fill(style.border)
	p.Rect(margin, top, 1.5, h, "F")
	p.SetLineWidth(0.2)

	l.font("B", 8)
	l.text(style.title)
	p.Text(margin+pad, top+5, heading)

	l.font("", 9)
	l.text(colorText)
	y := top + 10
	for _, line := range lines {
		p.Text(margin+pad, y, line)
		y += lineHeight
	}
}

// photos lays prepared photos out two per row, repeating the heading on
// continuation pages.
func (l *layout) photos(photos []*preparedPhoto) {
	if len(photos) == 0 {
		return
	}
	const title = "EVIDENCIAS FOTOGRAFICAS"

	l.newPage()
	l.photoHeading(title)
	for i, ph := range photos {
		col := i % 2
		if col == 0 && l.y+photoCellH > pageBottom {
			l.newPage()
			l.photoHeading(title + " (CONT.)")
		}
		l.photoCell(ph, margin+float64(col)*photoStride, l.y)
		if col == 1 || i == len(photos)-1 {
			l.y += photoRowStep
		}
	}
}

func (l *layout) photoHeading(title string) {
	l.font("B", 14)
	l.text(colorPrimary)
	l.pdf.Text(margin, l.y, title)
	l.y += 10
}

func (l *layout) photoCell(ph *preparedPhoto, x, y float64) {
	p := l.pdf
	l.draw(colorFrame)
	p.SetLineWidth(0.2)
	p.Rect(x, y, photoCellW, photoCellH, "D")

	w, h := fitBox(ph.width, ph.height, photoImageW, photoImageH)
	ix := x + 1.5 + (photoImageW-w)/2
	iy := y + 1.5 + (photoImageH-h)/2
	p.ImageOptions(ph.name, ix, iy, w, h, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")

	l.fill(colorCaptionB)
	p.Rect(x+1.5, y+62, photoImageW, captionStripH, "F")

	caption := strings.TrimSpace(Sanitize(ph.caption))
	l.font("B", 7)
	l.text(colorCaptionT)
	if caption == "" {
		l.font("I", 7)
		l.text(colorLabel)
		caption = "SEM LEGENDA"
	}
	lines := l.pdf.SplitText(strings.ReplaceAll(caption, "\n", " "), photoImageW-3)
	if len(lines) > captionLines {
		rest := strings.Join(lines[captionLines-1:], " ")
		lines = lines[:captionLines]
		lines[captionLines-1] = l.fit(rest, photoImageW-3)
	}
	for i, line := range lines {
		p.Text(x+4, y+65.5+float64(i)*captionLineH, line)
	}
}

// footer stamps every page once all content is placed.
func (l *layout) footer(docID string) {
	p := l.pdf
	total := p.PageCount()
	for i := 1; i <= total; i++ {
		p.SetPage(i)
		l.draw(colorFrame)
		p.SetLineWidth(0.2)
		p.Line(margin, 282, margin+contentWidth, 282)

		l.font("", 7)
		l.text(colorLabel)
		p.Text(margin, 287, "DOC "+docID)
		page := fmt.Sprintf("Pagina %d de %d", i, total)
		p.Text(margin+contentWidth-p.GetStringWidth(page), 287, page)
	}
}
