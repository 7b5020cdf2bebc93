package pdftext

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// glyphWidthRatio approximates a glyph's advance as a fraction of the
	// font size, for fonts without a width table and for gap sizing.
	glyphWidthRatio = 0.5
	// wordGapRatio is the gap, in glyph widths, under which two runs are
	// joined without a space.
	wordGapRatio    = 0.25
	defaultFontSize = 10
	baselineSlack   = 1.0
)

// textRun is a stretch of glyphs drawn left to right on one baseline.
type textRun struct {
	text   strings.Builder
	x, y   float64
	size   float64
	extent float64
	lastX  float64
	lastW  float64
}

func (r *textRun) end() float64 { return r.x + r.extent }

func (r *textRun) add(g pdf.Text) {
	r.text.WriteString(g.S)
	r.lastX, r.lastW = g.X, g.W
	if g.W > 0 {
		r.extent = g.X + g.W - r.x
		return
	}
	r.extent += glyphWidth(g.FontSize) * float64(len([]rune(g.S)))
}

// continues reports whether g is the next glyph of r. Fonts without widths
// place every glyph of a string at the same X.
func (r *textRun) continues(g pdf.Text) bool {
	if math.Abs(g.Y-r.y) > baselineSlack {
		return false
	}
	return math.Abs(g.X-(r.lastX+r.lastW)) <= glyphWidth(g.FontSize)*wordGapRatio
}

func glyphWidth(size float64) float64 {
	size = math.Abs(size)
	if size == 0 {
		size = defaultFontSize
	}
	return size * glyphWidthRatio
}

// layoutPage rebuilds the visual lines of a page from its positioned
// glyphs, top to bottom. Horizontal gaps become spaces in proportion to the
// font size.
func layoutPage(glyphs []pdf.Text) []string {
	var runs []*textRun
	for _, g := range glyphs {
		if g.S == "" || g.S == "\n" || g.S == "\r" {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].continues(g) {
			runs[n-1].add(g)
			continue
		}
		r := &textRun{x: g.X, y: g.Y, size: g.FontSize}
		r.add(g)
		runs = append(runs, r)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		yi, yj := math.Round(runs[i].y), math.Round(runs[j].y)
		if yi != yj {
			return yi > yj
		}
		return runs[i].x < runs[j].x
	})

	var lines []string
	for start := 0; start < len(runs); {
		end := start + 1
		for end < len(runs) && math.Round(runs[end].y) == math.Round(runs[start].y) {
			end++
		}
		if line := joinRow(runs[start:end]); line != "" {
			lines = append(lines, line)
		}
		start = end
	}
	return lines
}

func joinRow(row []*textRun) string {
	var b strings.Builder
	cursor := 0.0
	for i, r := range row {
		if i > 0 {
			unit := glyphWidth(r.size)
			if gap := r.x - cursor; gap > unit*wordGapRatio {
				b.WriteString(strings.Repeat(" ", max(1, int(math.Round(gap/unit)))))
			}
		}
		b.WriteString(r.text.String())
		cursor = max(cursor, r.end())
	}
	return strings.TrimRight(b.String(), " ")
}
